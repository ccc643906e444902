package leaving

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"churchflow-backend/internal/config"
	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/infrastructure/database"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/certnum"
	"churchflow-backend/internal/pkg/dates"
	"churchflow-backend/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 3

// Service issues and manages leaving certificates. Store owns the certificate
// lifecycle; DB serves the read-only joins and aggregates.
type Service struct {
	Store       domain.CertificateStore
	DB          *gorm.DB
	Scope       string // config.SequenceScopeGlobal or config.SequenceScopeMonthly
	MaxAttempts int
	Now         func() time.Time
	Metrics     *metrics.CertificateMetrics
}

type IssueInput struct {
	MemberID       string `json:"memberId"`
	Reason         string `json:"reason"`
	LeavingDate    string `json:"leavingDate"`
	IssueDate      string `json:"issueDate"`
	TransferChurch string `json:"transferChurch"`
	Notes          string `json:"notes"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) maxAttempts() int {
	if s.MaxAttempts < 1 {
		return defaultMaxAttempts
	}
	return s.MaxAttempts
}

// Issue creates an active leaving certificate for a member of the caller's church.
// Each attempt runs in its own transaction; a certificate number collision rolls the
// attempt back and retries with a higher floor.
func (s *Service) Issue(ctx context.Context, id domain.Identity, in IssueInput) (*CertificateView, error) {
	started := time.Now()
	cert, err := s.issue(ctx, id, in)
	s.Metrics.ObserveDuration(time.Since(started))
	if err != nil {
		if ae, ok := apperr.As(err); ok {
			s.Metrics.IncFailure(string(ae.Kind))
		}
		return nil, err
	}
	s.Metrics.IncIssued(cert.Reason)
	log.Info().
		Str("certificate_id", cert.CertificateID.String()).
		Str("certificate_number", cert.CertificateNumber).
		Str("church_id", cert.ChurchID.String()).
		Msg("leaving certificate issued")

	view, err := s.viewOne(ctx, cert)
	if err != nil {
		return nil, apperr.Internal(err, msgCreateFailed)
	}
	return view, nil
}

func (s *Service) issue(ctx context.Context, id domain.Identity, in IssueInput) (*domain.LeavingCertificate, error) {
	memberRaw := strings.TrimSpace(in.MemberID)
	reason := strings.TrimSpace(in.Reason)
	if memberRaw == "" || reason == "" {
		return nil, ErrMemberAndReasonRequired
	}
	if !lo.Contains(domain.CertificateReasons, reason) {
		return nil, ErrInvalidReason
	}
	transferChurch := strings.TrimSpace(in.TransferChurch)
	if reason == domain.ReasonTransfer && transferChurch == "" {
		return nil, ErrTransferChurchRequired
	}
	memberID, err := uuid.Parse(memberRaw)
	if err != nil {
		return nil, ErrMemberNotFound
	}

	now := s.now()
	leavingDate, issueDate := now, now
	if strings.TrimSpace(in.LeavingDate) != "" {
		if leavingDate, err = dates.Parse(in.LeavingDate); err != nil {
			return nil, ErrInvalidLeavingDate
		}
	}
	if strings.TrimSpace(in.IssueDate) != "" {
		if issueDate, err = dates.Parse(in.IssueDate); err != nil {
			return nil, ErrInvalidIssueDate
		}
	}

	draft := domain.LeavingCertificate{
		MemberID:    memberID,
		ChurchID:    id.ChurchID,
		PastorID:    id.PastorID,
		LeavingDate: leavingDate,
		IssueDate:   issueDate,
		Reason:      reason,
		Status:      domain.CertificateActive,
	}
	if reason == domain.ReasonTransfer {
		draft.TransferChurch = &transferChurch
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		draft.Notes = &notes
	}

	minSeq := 0
	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		cert := draft
		err := s.Store.Transaction(ctx, func(tx domain.CertificateStore) error {
			return s.issueOnce(ctx, tx, id, &cert, now, minSeq)
		})
		if err == nil {
			return &cert, nil
		}
		if !errors.Is(err, database.ErrDuplicateKey) {
			if _, ok := apperr.As(err); ok {
				return nil, err
			}
			return nil, apperr.Internal(err, msgCreateFailed)
		}

		s.Metrics.IncCollision()
		log.Warn().
			Int("attempt", attempt).
			Str("certificate_number", cert.CertificateNumber).
			Msg("certificate number collision, retrying")
		if seq, ok := certnum.ParseSequence(cert.CertificateNumber); ok && seq > minSeq {
			minSeq = seq
		}
	}
	return nil, apperr.Internal(database.ErrDuplicateKey, msgUniqueNumberFailed)
}

// issueOnce re-checks the preconditions and allocates a number inside tx. minSeq is the
// highest sequence that already collided, so a retry never proposes it again.
func (s *Service) issueOnce(ctx context.Context, tx domain.CertificateStore, id domain.Identity, cert *domain.LeavingCertificate, now time.Time, minSeq int) error {
	member, err := tx.FindMember(ctx, cert.MemberID, id.ChurchID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	active, err := tx.FindActiveByMember(ctx, cert.MemberID)
	if err != nil {
		return err
	}
	if active != nil {
		return ErrActiveCertificateExists
	}

	number, err := s.allocate(ctx, tx, now, minSeq)
	if err != nil {
		return err
	}
	cert.CertificateNumber = number
	if err := tx.Insert(ctx, cert); err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]interface{}{
		"certificateNumber": cert.CertificateNumber,
		"memberId":          cert.MemberID,
		"reason":            cert.Reason,
	})
	return tx.RecordEvent(ctx, &domain.CertificateEvent{
		CertificateID: cert.CertificateID,
		ChurchID:      cert.ChurchID,
		EventType:     domain.EventCreated,
		ActorID:       &id.PastorID,
		EventData:     datatypes.JSON(data),
	})
}

// allocate returns the next certificate number for now's period. The floor comes from
// the most recent stored number so numbering continues above rows the counter never saw.
func (s *Service) allocate(ctx context.Context, tx domain.CertificateStore, now time.Time, minSeq int) (string, error) {
	scopeKey, prefix := config.SequenceScopeGlobal, ""
	if s.Scope == config.SequenceScopeMonthly {
		scopeKey, prefix = certnum.Period(now), certnum.PeriodPrefix(now)
	}

	floor := 0
	recent, err := tx.FindMostRecent(ctx, prefix)
	if err != nil {
		return "", err
	}
	if recent != nil {
		floor, _ = certnum.ParseSequence(recent.CertificateNumber)
	}
	if minSeq > floor {
		floor = minSeq
	}

	seq, err := tx.NextSequence(ctx, scopeKey, floor)
	if err != nil {
		return "", err
	}
	return certnum.Format(now, seq), nil
}

// Preview returns the number the next issuance would most likely receive, without
// reserving it.
func (s *Service) Preview(ctx context.Context) (string, error) {
	now := s.now()
	prefix := ""
	if s.Scope == config.SequenceScopeMonthly {
		prefix = certnum.PeriodPrefix(now)
	}
	recent, err := s.Store.FindMostRecent(ctx, prefix)
	if err != nil {
		return "", apperr.Internal(err, msgFetchFailed)
	}
	prev := ""
	if recent != nil {
		prev = recent.CertificateNumber
	}
	return certnum.Next(prev, now), nil
}
