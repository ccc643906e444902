package leaving

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/dates"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListQuery struct {
	Status    string
	StartDate string
	EndDate   string
}

// Breakdown counts certificates by status and by reason.
type Breakdown struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Revoked    int `json:"revoked"`
	Archived   int `json:"archived"`
	Transfer   int `json:"transfer"`
	Relocation int `json:"relocation"`
	Personal   int `json:"personal"`
	Other      int `json:"other"`
}

func breakdownOf(certs []domain.LeavingCertificate) Breakdown {
	byStatus := lo.CountValuesBy(certs, func(c domain.LeavingCertificate) string { return c.Status })
	byReason := lo.CountValuesBy(certs, func(c domain.LeavingCertificate) string { return c.Reason })
	return Breakdown{
		Total:      len(certs),
		Active:     byStatus[domain.CertificateActive],
		Revoked:    byStatus[domain.CertificateRevoked],
		Archived:   byStatus[domain.CertificateArchived],
		Transfer:   byReason[domain.ReasonTransfer],
		Relocation: byReason[domain.ReasonRelocation],
		Personal:   byReason[domain.ReasonPersonal],
		Other:      byReason[domain.ReasonOther],
	}
}

type ListResult struct {
	Leavings []CertificateView `json:"leavings"`
	Stats    Breakdown         `json:"stats"`
}

// List returns the caller's certificates, newest leaving date first, with a breakdown of the result.
func (s *Service) List(ctx context.Context, id domain.Identity, q ListQuery) (*ListResult, error) {
	filter := domain.CertificateFilter{Status: strings.TrimSpace(q.Status)}
	if filter.Status != "" && !lo.Contains(domain.CertificateStatuses, filter.Status) {
		return nil, ErrInvalidStatusFilter
	}
	if strings.TrimSpace(q.StartDate) != "" {
		from, err := dates.Parse(q.StartDate)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		filter.From = &from
	}
	if strings.TrimSpace(q.EndDate) != "" {
		to, err := dates.ParseEnd(q.EndDate)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		filter.To = &to
	}

	certs, err := s.Store.ListByChurch(ctx, id.ChurchID, filter)
	if err != nil {
		return nil, apperr.Internal(err, msgFetchFailed)
	}
	views, err := s.attachDisplay(ctx, certs, false)
	if err != nil {
		return nil, apperr.Internal(err, msgFetchFailed)
	}
	return &ListResult{Leavings: views, Stats: breakdownOf(certs)}, nil
}

func parseCertificateID(raw string) (uuid.UUID, error) {
	certID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidCertificateID
	}
	return certID, nil
}

// Get returns one certificate of the caller's church. Certificates of other churches are reported as not found.
func (s *Service) Get(ctx context.Context, id domain.Identity, rawID string) (*CertificateView, error) {
	certID, err := parseCertificateID(rawID)
	if err != nil {
		return nil, err
	}
	cert, err := s.Store.FindByID(ctx, certID, id.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err, msgFetchFailed)
	}
	if cert == nil {
		return nil, ErrCertificateNotFound
	}
	view, err := s.viewOne(ctx, cert)
	if err != nil {
		return nil, apperr.Internal(err, msgFetchFailed)
	}
	return view, nil
}

// UpdateInput carries the editable fields. Unknown status or reason values are ignored.
type UpdateInput struct {
	Status         *string `json:"status"`
	Reason         *string `json:"reason"`
	Notes          *string `json:"notes"`
	TransferChurch *string `json:"transferChurch"`
}

func (in UpdateInput) patch() domain.CertificatePatch {
	var p domain.CertificatePatch
	if in.Status != nil && lo.Contains(domain.CertificateStatuses, *in.Status) {
		p.Status = in.Status
	}
	if in.Reason != nil && lo.Contains(domain.CertificateReasons, *in.Reason) {
		p.Reason = in.Reason
	}
	p.Notes = in.Notes
	p.TransferChurch = in.TransferChurch
	return p
}

// Update applies the allow-listed fields and records an UPDATED event listing what changed.
// The one-active-per-member rule is only enforced at issuance.
func (s *Service) Update(ctx context.Context, id domain.Identity, rawID string, in UpdateInput) (*CertificateView, error) {
	certID, err := parseCertificateID(rawID)
	if err != nil {
		return nil, err
	}
	patch := in.patch()

	var updated *domain.LeavingCertificate
	err = s.Store.Transaction(ctx, func(tx domain.CertificateStore) error {
		before, err := tx.FindByID(ctx, certID, id.ChurchID)
		if err != nil {
			return err
		}
		if before == nil {
			return ErrCertificateNotFound
		}
		if updated, err = tx.Update(ctx, certID, id.ChurchID, patch); err != nil {
			return err
		}
		if updated == nil {
			return ErrCertificateNotFound
		}
		changes := changedFields(before, updated)
		if len(changes) == 0 {
			return nil
		}
		data, _ := json.Marshal(changes)
		return tx.RecordEvent(ctx, &domain.CertificateEvent{
			CertificateID: certID,
			ChurchID:      id.ChurchID,
			EventType:     domain.EventUpdated,
			ActorID:       &id.PastorID,
			EventData:     datatypes.JSON(data),
		})
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Internal(err, msgUpdateFailed)
	}

	view, err := s.viewOne(ctx, updated)
	if err != nil {
		return nil, apperr.Internal(err, msgUpdateFailed)
	}
	return view, nil
}

type fieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

func changedFields(before, after *domain.LeavingCertificate) map[string]fieldChange {
	changes := map[string]fieldChange{}
	if before.Status != after.Status {
		changes["status"] = fieldChange{before.Status, after.Status}
	}
	if before.Reason != after.Reason {
		changes["reason"] = fieldChange{before.Reason, after.Reason}
	}
	if lo.FromPtr(before.Notes) != lo.FromPtr(after.Notes) {
		changes["notes"] = fieldChange{before.Notes, after.Notes}
	}
	if lo.FromPtr(before.TransferChurch) != lo.FromPtr(after.TransferChurch) {
		changes["transferChurch"] = fieldChange{before.TransferChurch, after.TransferChurch}
	}
	return changes
}

// Delete removes a certificate of the caller's church and records a DELETED event.
func (s *Service) Delete(ctx context.Context, id domain.Identity, rawID string) error {
	certID, err := parseCertificateID(rawID)
	if err != nil {
		return err
	}
	err = s.Store.Transaction(ctx, func(tx domain.CertificateStore) error {
		cert, err := tx.FindByID(ctx, certID, id.ChurchID)
		if err != nil {
			return err
		}
		if cert == nil {
			return ErrCertificateNotFound
		}
		deleted, err := tx.DeleteByID(ctx, certID, id.ChurchID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrCertificateNotFound
		}
		data, _ := json.Marshal(map[string]interface{}{
			"certificateNumber": cert.CertificateNumber,
			"memberId":          cert.MemberID,
			"status":            cert.Status,
		})
		return tx.RecordEvent(ctx, &domain.CertificateEvent{
			CertificateID: certID,
			ChurchID:      id.ChurchID,
			EventType:     domain.EventDeleted,
			ActorID:       &id.PastorID,
			EventData:     datatypes.JSON(data),
		})
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.Internal(err, msgDeleteFailed)
	}
	log.Info().Str("certificate_id", certID.String()).Str("church_id", id.ChurchID.String()).Msg("leaving certificate deleted")
	return nil
}

// Events returns the audit trail of a certificate, oldest first. It remains available after deletion.
func (s *Service) Events(ctx context.Context, id domain.Identity, rawID string) ([]domain.CertificateEvent, error) {
	certID, err := parseCertificateID(rawID)
	if err != nil {
		return nil, err
	}
	events, err := s.Store.ListEvents(ctx, certID, id.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err, msgFetchFailed)
	}
	return events, nil
}

type GenerateInput struct {
	LeavingID string `json:"leavingId"`
}

type PrintableMember struct {
	FullName string         `json:"fullName"`
	Phone    string         `json:"phone"`
	IsFamily bool           `json:"isFamily"`
	Children []domain.Child `json:"children"`
}

type PrintableChurch struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Printable is the print-ready certificate payload.
type Printable struct {
	CertificateNumber string          `json:"certificateNumber"`
	IssueDate         time.Time       `json:"issueDate"`
	LeavingDate       time.Time       `json:"leavingDate"`
	Member            PrintableMember `json:"member"`
	Church            PrintableChurch `json:"church"`
	Reason            string          `json:"reason"`
	TransferChurch    *string         `json:"transferChurch"`
	Notes             *string         `json:"notes"`
	Status            string          `json:"status"`
}

// Generate builds the print payload for a certificate of the caller's church.
func (s *Service) Generate(ctx context.Context, id domain.Identity, in GenerateInput) (*Printable, error) {
	if strings.TrimSpace(in.LeavingID) == "" {
		return nil, ErrCertificateIDMissing
	}
	certID, err := parseCertificateID(in.LeavingID)
	if err != nil {
		return nil, err
	}
	cert, err := s.Store.FindByID(ctx, certID, id.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err, msgGenerateFailed)
	}
	if cert == nil {
		return nil, ErrCertificateNotFound
	}
	view, err := s.viewOne(ctx, cert)
	if err != nil {
		return nil, apperr.Internal(err, msgGenerateFailed)
	}

	out := &Printable{
		CertificateNumber: cert.CertificateNumber,
		IssueDate:         cert.IssueDate,
		LeavingDate:       cert.LeavingDate,
		Member:            PrintableMember{Children: []domain.Child{}},
		Reason:            cert.Reason,
		TransferChurch:    cert.TransferChurch,
		Notes:             cert.Notes,
		Status:            cert.Status,
	}
	if m := view.Member; m != nil {
		member := domain.Member{FirstName: m.FirstName, MiddleName: m.MiddleName, LastName: m.LastName}
		out.Member = PrintableMember{
			FullName: member.FullName(),
			Phone:    m.Phone,
			IsFamily: m.IsFamily,
			Children: m.Children,
		}
	}
	if c := view.Church; c != nil {
		out.Church = PrintableChurch{
			Name:    c.Name,
			Address: lo.FromPtr(c.Address),
			Phone:   lo.FromPtr(c.Phone),
			Email:   lo.FromPtr(c.Email),
		}
	}
	return out, nil
}

type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

type StatsResult struct {
	Stats   Breakdown    `json:"stats"`
	Monthly []MonthCount `json:"monthly"`
	Year    int          `json:"year"`
}

// Stats aggregates the caller's certificates whose leaving date falls in year
// (the current year when rawYear is empty).
func (s *Service) Stats(ctx context.Context, id domain.Identity, rawYear string) (*StatsResult, error) {
	now := s.now()
	year := now.Year()
	if strings.TrimSpace(rawYear) != "" {
		y, err := strconv.Atoi(strings.TrimSpace(rawYear))
		if err != nil || y < 1900 || y > 9999 {
			return nil, ErrInvalidYear
		}
		year = y
	}
	from, to := dates.YearRange(year, now.Location())

	certs, err := s.Store.ListByChurch(ctx, id.ChurchID, domain.CertificateFilter{From: &from, To: &to})
	if err != nil {
		return nil, apperr.Internal(err, msgStatsFailed)
	}

	perMonth := lo.CountValuesBy(certs, func(c domain.LeavingCertificate) int {
		return int(c.LeavingDate.In(now.Location()).Month())
	})
	monthly := make([]MonthCount, 0, len(perMonth))
	for month, count := range perMonth {
		monthly = append(monthly, MonthCount{Month: month, Count: count})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	return &StatsResult{Stats: breakdownOf(certs), Monthly: monthly, Year: year}, nil
}

type StatusCounts struct {
	Active   int64 `json:"active"`
	Revoked  int64 `json:"revoked"`
	Archived int64 `json:"archived"`
}

type ReasonCounts struct {
	Transfer   int64 `json:"transfer"`
	Relocation int64 `json:"relocation"`
	Personal   int64 `json:"personal"`
	Other      int64 `json:"other"`
}

type Summary struct {
	TotalLeavings  int64        `json:"totalLeavings"`
	RecentLeavings int64        `json:"recentLeavings"`
	TotalMembers   int64        `json:"totalMembers"`
	LeavingRate    float64      `json:"leavingRate"`
	Statuses       StatusCounts `json:"statuses"`
	Reasons        ReasonCounts `json:"reasons"`
}

type groupCount struct {
	Name  string
	Total int64
}

const recentWindow = 30 * 24 * time.Hour

// Summary runs the dashboard counts concurrently.
func (s *Service) Summary(ctx context.Context, id domain.Identity) (*Summary, error) {
	var (
		out      Summary
		byStatus []groupCount
		byReason []groupCount
	)
	since := s.now().Add(-recentWindow)
	certs := func(ctx context.Context) *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.LeavingCertificate{}).Where("church_id = ?", id.ChurchID)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return certs(egCtx).Count(&out.TotalLeavings).Error
	})
	eg.Go(func() error {
		return certs(egCtx).Where("leaving_date >= ?", since).Count(&out.RecentLeavings).Error
	})
	eg.Go(func() error {
		return certs(egCtx).Select("status AS name, COUNT(*) AS total").Group("status").Scan(&byStatus).Error
	})
	eg.Go(func() error {
		return certs(egCtx).Select("reason AS name, COUNT(*) AS total").Group("reason").Scan(&byReason).Error
	})
	eg.Go(func() error {
		return s.DB.WithContext(egCtx).Model(&domain.Member{}).Where("church_id = ?", id.ChurchID).Count(&out.TotalMembers).Error
	})
	if err := eg.Wait(); err != nil {
		return nil, apperr.Internal(err, msgSummaryFailed)
	}

	for _, g := range byStatus {
		switch g.Name {
		case domain.CertificateActive:
			out.Statuses.Active = g.Total
		case domain.CertificateRevoked:
			out.Statuses.Revoked = g.Total
		case domain.CertificateArchived:
			out.Statuses.Archived = g.Total
		}
	}
	for _, g := range byReason {
		switch g.Name {
		case domain.ReasonTransfer:
			out.Reasons.Transfer = g.Total
		case domain.ReasonRelocation:
			out.Reasons.Relocation = g.Total
		case domain.ReasonPersonal:
			out.Reasons.Personal = g.Total
		case domain.ReasonOther:
			out.Reasons.Other = g.Total
		}
	}
	out.LeavingRate = leavingRate(out.TotalLeavings, out.TotalMembers)
	return &out, nil
}

// leavingRate is leavings per hundred members, rounded to one decimal.
func leavingRate(leavings, members int64) float64 {
	if members <= 0 {
		return 0
	}
	return math.Round(float64(leavings)/float64(members)*1000) / 10
}
