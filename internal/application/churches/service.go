package churches

import (
	"context"
	"errors"
	"strings"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidChurchID = apperr.Validation("Invalid church ID")
	ErrChurchNotFound  = apperr.NotFound("Church not found")
	ErrOtherChurch     = apperr.Forbidden("You can only update your own church")
	ErrNameRequired    = apperr.Validation("Church name cannot be empty")
	ErrInvalidEmail    = apperr.Validation("Invalid email address")
)

// Service exposes church (tenant) records.
type Service struct {
	DB *gorm.DB
}

// UpdateInput lists the editable church fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// List returns every church ordered by name, as used by the transfer-church picker.
func (s *Service) List(ctx context.Context) ([]domain.Church, error) {
	out := []domain.Church{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch churches")
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, churchID uuid.UUID) (*domain.Church, error) {
	var church domain.Church
	if err := s.DB.WithContext(ctx).Where("church_id = ?", churchID).First(&church).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, apperr.Internal(err, "Failed to fetch church")
	}
	return &church, nil
}

// Mine returns the caller's church.
func (s *Service) Mine(ctx context.Context, id domain.Identity) (*domain.Church, error) {
	return s.find(ctx, id.ChurchID)
}

// Update edits the caller's own church.
func (s *Service) Update(ctx context.Context, id domain.Identity, rawID string, in UpdateInput) (*domain.Church, error) {
	churchID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, ErrInvalidChurchID
	}
	if churchID != id.ChurchID {
		return nil, ErrOtherChurch
	}
	church, err := s.find(ctx, churchID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = name
	}
	if in.Address != nil {
		updates["address"] = optional(*in.Address)
	}
	if in.Phone != nil {
		updates["phone"] = optional(*in.Phone)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != "" && !validation.IsValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		updates["email"] = optional(email)
	}
	if len(updates) == 0 {
		return church, nil
	}
	if err := s.DB.WithContext(ctx).Model(&domain.Church{}).Where("church_id = ?", churchID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update church")
	}
	return s.find(ctx, churchID)
}

// optional maps blank strings to NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
