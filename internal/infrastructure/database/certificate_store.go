package database

import (
	"context"
	"fmt"

	"churchflow-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificateStore is the GORM implementation of domain.CertificateStore.
type CertificateStore struct {
	db *gorm.DB
}

func NewCertificateStore(db *gorm.DB) *CertificateStore {
	return &CertificateStore{db: db}
}

var _ domain.CertificateStore = (*CertificateStore)(nil)

func (s *CertificateStore) FindMostRecent(ctx context.Context, prefix string) (*domain.LeavingCertificate, error) {
	q := s.db.WithContext(ctx).Model(&domain.LeavingCertificate{})
	if prefix != "" {
		q = q.Where("certificate_number LIKE ?", prefix+"%")
	}
	var certs []domain.LeavingCertificate
	if err := q.Order("certificate_number DESC").Limit(1).Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("find most recent certificate: %w", err)
	}
	if len(certs) == 0 {
		return nil, nil
	}
	return &certs[0], nil
}

func (s *CertificateStore) FindActiveByMember(ctx context.Context, memberID uuid.UUID) (*domain.LeavingCertificate, error) {
	var certs []domain.LeavingCertificate
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberID, domain.CertificateActive).
		Limit(1).
		Find(&certs).Error
	if err != nil {
		return nil, fmt.Errorf("find active certificate: %w", err)
	}
	if len(certs) == 0 {
		return nil, nil
	}
	return &certs[0], nil
}

func (s *CertificateStore) FindMember(ctx context.Context, memberID, churchID uuid.UUID) (*domain.Member, error) {
	var members []domain.Member
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND church_id = ?", memberID, churchID).
		Limit(1).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return &members[0], nil
}

func (s *CertificateStore) Insert(ctx context.Context, cert *domain.LeavingCertificate) error {
	if err := s.db.WithContext(ctx).Create(cert).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *CertificateStore) FindByID(ctx context.Context, id, churchID uuid.UUID) (*domain.LeavingCertificate, error) {
	var certs []domain.LeavingCertificate
	err := s.db.WithContext(ctx).
		Where("certificate_id = ? AND church_id = ?", id, churchID).
		Limit(1).
		Find(&certs).Error
	if err != nil {
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	if len(certs) == 0 {
		return nil, nil
	}
	return &certs[0], nil
}

// Update applies only the allow-listed fields; certificate number, member and church never change.
func (s *CertificateStore) Update(ctx context.Context, id, churchID uuid.UUID, patch domain.CertificatePatch) (*domain.LeavingCertificate, error) {
	cert, err := s.FindByID(ctx, id, churchID)
	if err != nil || cert == nil {
		return cert, err
	}

	fields := map[string]interface{}{}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.Reason != nil {
		fields["reason"] = *patch.Reason
	}
	if patch.TransferChurch != nil {
		fields["transfer_church"] = *patch.TransferChurch
	}
	if len(fields) == 0 {
		return cert, nil
	}

	err = s.db.WithContext(ctx).
		Model(&domain.LeavingCertificate{}).
		Where("certificate_id = ? AND church_id = ?", id, churchID).
		Updates(fields).Error
	if err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	return s.FindByID(ctx, id, churchID)
}

func (s *CertificateStore) DeleteByID(ctx context.Context, id, churchID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("certificate_id = ? AND church_id = ?", id, churchID).
		Delete(&domain.LeavingCertificate{})
	if res.Error != nil {
		return false, fmt.Errorf("delete certificate: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *CertificateStore) ListByChurch(ctx context.Context, churchID uuid.UUID, filter domain.CertificateFilter) ([]domain.LeavingCertificate, error) {
	q := s.db.WithContext(ctx).Where("church_id = ?", churchID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("leaving_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("leaving_date <= ?", *filter.To)
	}
	certs := []domain.LeavingCertificate{}
	if err := q.Order("leaving_date DESC").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

// NextSequence increments the counter row for scope. Inside a transaction the UPDATE
// holds the row lock until commit, so concurrent issuers are serialized on it.
// floor lets numbering continue above certificates written before the counter existed.
func (s *CertificateStore) NextSequence(ctx context.Context, scope string, floor int) (int, error) {
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.CertificateCounter{Scope: scope}).Error
	if err != nil {
		return 0, fmt.Errorf("ensure counter %q: %w", scope, err)
	}

	err = db.Model(&domain.CertificateCounter{}).
		Where("scope = ?", scope).
		Update("value", gorm.Expr("value + 1")).Error
	if err != nil {
		return 0, fmt.Errorf("bump counter %q: %w", scope, err)
	}

	var counter domain.CertificateCounter
	if err := db.Where("scope = ?", scope).Take(&counter).Error; err != nil {
		return 0, fmt.Errorf("read counter %q: %w", scope, err)
	}
	if counter.Value > floor {
		return counter.Value, nil
	}

	next := floor + 1
	err = db.Model(&domain.CertificateCounter{}).
		Where("scope = ?", scope).
		Update("value", next).Error
	if err != nil {
		return 0, fmt.Errorf("raise counter %q: %w", scope, err)
	}
	return next, nil
}

func (s *CertificateStore) RecordEvent(ctx context.Context, event *domain.CertificateEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record certificate event: %w", err)
	}
	return nil
}

func (s *CertificateStore) ListEvents(ctx context.Context, certificateID, churchID uuid.UUID) ([]domain.CertificateEvent, error) {
	events := []domain.CertificateEvent{}
	err := s.db.WithContext(ctx).
		Where("certificate_id = ? AND church_id = ?", certificateID, churchID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list certificate events: %w", err)
	}
	return events, nil
}

func (s *CertificateStore) Transaction(ctx context.Context, fn func(domain.CertificateStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CertificateStore{db: tx})
	})
}
