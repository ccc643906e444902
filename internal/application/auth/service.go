package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/infrastructure/database"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service handles pastor accounts and access tokens.
type Service struct {
	DB      *gorm.DB
	Token   TokenConfig
	Revoker *Revoker
	Now     func() time.Time
}

type RegisterInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	ChurchName string `json:"churchName" validate:"notblank"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChurchRef is the short church shape embedded in user responses.
type ChurchRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserView is the public user shape (never includes the password hash).
type UserView struct {
	ID     uuid.UUID  `json:"id"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
	Church *ChurchRef `json:"church"`
}

// Session is a freshly minted token plus the user it was minted for.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      UserView
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the church, its pastor, and links them back, all in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.ChurchName)
	if email == "" || in.Password == "" || name == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err, "Registration failed")
	}

	var (
		user   domain.User
		church domain.Church
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}

		church = domain.Church{Name: name}
		if err := tx.Create(&church).Error; err != nil {
			return err
		}
		user = domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RolePastor,
			ChurchID:     church.ChurchID,
		}
		if err := tx.Create(&user).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return ErrUserExists
			}
			return err
		}
		church.PastorID = &user.UserID
		return tx.Model(&church).Update("pastor_id", user.UserID).Error
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Internal(err, "Registration failed")
	}

	log.Info().Str("user_id", user.UserID.String()).Str("church_id", church.ChurchID.String()).Msg("pastor registered")
	return s.newSession(user, &church)
}

// Login checks credentials. Every mismatch yields the same error so accounts cannot be probed.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err, "Login failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	church, err := s.findChurch(ctx, user.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err, "Login failed")
	}
	return s.newSession(user, church)
}

// Authenticate turns a raw token into the caller identity. It rejects revoked tokens
// and tokens whose user no longer exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := ParseToken(s.Token, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Warn().Err(err).Msg("token revocation lookup failed")
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperr.Internal(err, "Internal Server Error")
	}
	if !constants.IsValidRole(user.Role) {
		return nil, ErrInvalidToken
	}

	identity := &domain.Identity{
		PastorID: user.UserID,
		ChurchID: user.ChurchID,
		Email:    user.Email,
		Role:     user.Role,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Me returns the caller with their church.
func (s *Service) Me(ctx context.Context, id domain.Identity) (*UserView, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id.PastorID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err, "Internal Server Error")
	}
	church, err := s.findChurch(ctx, user.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err, "Internal Server Error")
	}
	view := toUserView(user, church)
	return &view, nil
}

// Logout revokes the caller's token id until its natural expiry.
func (s *Service) Logout(ctx context.Context, id domain.Identity) error {
	if err := s.Revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return apperr.Internal(err, "Logout failed")
	}
	return nil
}

func (s *Service) newSession(user domain.User, church *domain.Church) (*Session, error) {
	token, claims, err := MintToken(s.Token, s.now(), user.UserID, user.ChurchID, user.Role)
	if err != nil {
		return nil, apperr.Internal(err, "Internal Server Error")
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      toUserView(user, church),
	}, nil
}

func (s *Service) findChurch(ctx context.Context, churchID uuid.UUID) (*domain.Church, error) {
	var churches []domain.Church
	if err := s.DB.WithContext(ctx).Where("church_id = ?", churchID).Limit(1).Find(&churches).Error; err != nil {
		return nil, err
	}
	if len(churches) == 0 {
		return nil, nil
	}
	return &churches[0], nil
}

func toUserView(user domain.User, church *domain.Church) UserView {
	view := UserView{ID: user.UserID, Email: user.Email, Role: user.Role}
	if church != nil {
		view.Church = &ChurchRef{ID: church.ChurchID, Name: church.Name}
	}
	return view
}
