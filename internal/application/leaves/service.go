package leaves

import (
	"context"
	"errors"
	"strings"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/dates"
	"churchflow-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrMissingFields     = apperr.Validation("Missing required fields")
	ErrInvalidType       = apperr.Validation("Invalid leave type")
	ErrInvalidStatus     = apperr.Validation("Invalid leave status")
	ErrInvalidDates      = apperr.Validation("Invalid start or end date")
	ErrEndBeforeStart    = apperr.Validation("End date must be on or after start date")
	ErrInvalidID         = apperr.Validation("Invalid ID format")
	ErrMemberNotFound    = apperr.NotFound("Member not found in your church")
	ErrLeaveNotFound     = apperr.NotFound("Leave request not found in your church")
	ErrChurchChange      = apperr.Validation("Cannot change church affiliation")
	ErrNotPendingUpdate  = apperr.Forbidden("Cannot update a leave request that is not pending")
	ErrNotPendingDelete  = apperr.Forbidden("Cannot delete leave request that is not pending")
	ErrAlreadyProcessed  = apperr.Validation("Cannot change status of a leave request that is already processed")
	ErrApproveNotAllowed = apperr.Forbidden("You do not have permission to approve/reject leave requests")
)

var (
	leaveTypes    = []string{domain.LeaveSick, domain.LeavePersonal, domain.LeaveVacation}
	leaveStatuses = []string{domain.LeavePending, domain.LeaveApproved, domain.LeaveRejected}
)

// Service manages member leave requests within the caller's church.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	MemberID  string `json:"memberId" validate:"notblank"`
	Type      string `json:"type" validate:"notblank"`
	StartDate string `json:"startDate" validate:"notblank"`
	EndDate   string `json:"endDate" validate:"notblank"`
	Reason    string `json:"reason" validate:"notblank"`
}

// UpdateInput is the PUT body. Church is only accepted when it matches the caller's church.
type UpdateInput struct {
	Type      *string `json:"type"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Reason    *string `json:"reason"`
	Church    *string `json:"church"`
}

// PatchInput is the PATCH body used to approve or reject a request.
type PatchInput struct {
	Status *string `json:"status"`
	Reason *string `json:"reason"`
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := dates.Parse(start)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	to, err := dates.Parse(end)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrEndBeforeStart
	}
	return from, to, nil
}

func (s *Service) Create(ctx context.Context, id domain.Identity, in CreateInput) (*domain.LeaveRequest, error) {
	if err := validation.Struct(&in, ErrMissingFields.Message); err != nil {
		return nil, err
	}
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if !lo.Contains(leaveTypes, in.Type) {
		return nil, ErrInvalidType.WithDetails(map[string]string{"type": "must be one of: " + strings.Join(leaveTypes, ", ")})
	}
	start, end, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	memberID, err := uuid.Parse(strings.TrimSpace(in.MemberID))
	if err != nil {
		return nil, ErrMemberNotFound
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Member{}).
		Where("member_id = ? AND church_id = ?", memberID, id.ChurchID).
		Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create leave request")
	}
	if count == 0 {
		return nil, ErrMemberNotFound
	}

	leave := domain.LeaveRequest{
		MemberID:  memberID,
		ChurchID:  id.ChurchID,
		Type:      in.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    domain.LeavePending,
		CreatedBy: id.PastorID,
	}
	if err := s.DB.WithContext(ctx).Create(&leave).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create leave request")
	}
	log.Info().Str("leave_id", leave.LeaveID.String()).Str("member_id", memberID.String()).Msg("leave request created")
	return s.load(ctx, leave.LeaveID, id.ChurchID)
}

// List returns the church's leave requests, newest first, with members attached.
func (s *Service) List(ctx context.Context, id domain.Identity) ([]domain.LeaveRequest, error) {
	out := []domain.LeaveRequest{}
	if err := s.DB.WithContext(ctx).Preload("Member").
		Where("church_id = ?", id.ChurchID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch leave requests")
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, leaveID, churchID uuid.UUID) (*domain.LeaveRequest, error) {
	var leave domain.LeaveRequest
	err := s.DB.WithContext(ctx).Preload("Member").
		Where("leave_id = ? AND church_id = ?", leaveID, churchID).
		First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, apperr.Internal(err, "Failed to fetch leave request")
	}
	return &leave, nil
}

func (s *Service) Get(ctx context.Context, id domain.Identity, rawID string) (*domain.LeaveRequest, error) {
	leaveID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.load(ctx, leaveID, id.ChurchID)
}

func (s *Service) save(ctx context.Context, leave *domain.LeaveRequest, updates map[string]any) (*domain.LeaveRequest, error) {
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&domain.LeaveRequest{}).
			Where("leave_id = ? AND church_id = ?", leave.LeaveID, leave.ChurchID).
			Updates(updates).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to update leave request")
		}
	}
	return s.load(ctx, leave.LeaveID, leave.ChurchID)
}

// Update edits a request's details. Processed requests can only be edited by their creator.
func (s *Service) Update(ctx context.Context, id domain.Identity, rawID string, in UpdateInput) (*domain.LeaveRequest, error) {
	leave, err := s.Get(ctx, id, rawID)
	if err != nil {
		return nil, err
	}
	if in.Church != nil && strings.TrimSpace(*in.Church) != "" && !strings.EqualFold(strings.TrimSpace(*in.Church), id.ChurchID.String()) {
		return nil, ErrChurchChange
	}
	if leave.Status != domain.LeavePending && leave.CreatedBy != id.PastorID {
		return nil, ErrNotPendingUpdate
	}

	updates := map[string]any{}
	if in.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*in.Type))
		if !lo.Contains(leaveTypes, t) {
			return nil, ErrInvalidType
		}
		updates["type"] = t
	}
	if in.Reason != nil {
		r := strings.TrimSpace(*in.Reason)
		if r == "" {
			return nil, ErrMissingFields
		}
		updates["reason"] = r
	}
	if in.StartDate != nil || in.EndDate != nil {
		start := leave.StartDate.Format(time.RFC3339Nano)
		end := leave.EndDate.Format(time.RFC3339Nano)
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil {
			end = *in.EndDate
		}
		from, to, err := parseRange(start, end)
		if err != nil {
			return nil, err
		}
		updates["start_date"] = from
		updates["end_date"] = to
	}
	return s.save(ctx, leave, updates)
}

// SetStatus approves or rejects a pending request. The returned label names the outcome.
func (s *Service) SetStatus(ctx context.Context, id domain.Identity, rawID string, in PatchInput) (*domain.LeaveRequest, string, error) {
	leave, err := s.Get(ctx, id, rawID)
	if err != nil {
		return nil, "", err
	}

	updates := map[string]any{}
	label := "updated"
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		if !lo.Contains(leaveStatuses, status) {
			return nil, "", ErrInvalidStatus
		}
		if status != domain.LeavePending && id.Role != domain.RolePastor {
			return nil, "", ErrApproveNotAllowed
		}
		if leave.Status != domain.LeavePending {
			return nil, "", ErrAlreadyProcessed
		}
		updates["status"] = status
		label = status
	}
	if in.Reason != nil && strings.TrimSpace(*in.Reason) != "" {
		updates["reason"] = strings.TrimSpace(*in.Reason)
	}

	updated, err := s.save(ctx, leave, updates)
	if err != nil {
		return nil, "", err
	}
	if label != "updated" {
		log.Info().Str("leave_id", leave.LeaveID.String()).Str("status", label).Msg("leave request processed")
	}
	return updated, label, nil
}

// Delete removes a request that is pending, or that the caller created or may manage as pastor.
func (s *Service) Delete(ctx context.Context, id domain.Identity, rawID string) error {
	leave, err := s.Get(ctx, id, rawID)
	if err != nil {
		return err
	}
	if leave.Status != domain.LeavePending && leave.CreatedBy != id.PastorID && id.Role != domain.RolePastor {
		return ErrNotPendingDelete
	}
	if err := s.DB.WithContext(ctx).
		Where("leave_id = ? AND church_id = ?", leave.LeaveID, id.ChurchID).
		Delete(&domain.LeaveRequest{}).Error; err != nil {
		return apperr.Internal(err, "Failed to delete leave request")
	}
	return nil
}
