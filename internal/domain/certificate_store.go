package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CertificateFilter narrows a church's certificate listing. Zero values mean "no filter".
type CertificateFilter struct {
	Status string
	From   *time.Time // leavingDate >= From
	To     *time.Time // leavingDate <= To
}

// CertificatePatch is the allow-list of mutable certificate fields. Nil fields are left unchanged.
type CertificatePatch struct {
	Status         *string
	Notes          *string
	Reason         *string
	TransferChurch *string
}

// Empty reports whether the patch changes nothing.
func (p CertificatePatch) Empty() bool {
	return p.Status == nil && p.Notes == nil && p.Reason == nil && p.TransferChurch == nil
}

// CertificateStore persists leaving certificates and their numbering counters.
// Lookups that miss return (nil, nil).
type CertificateStore interface {
	// FindMostRecent returns the certificate with the greatest number starting with prefix
	// ("" matches every certificate).
	FindMostRecent(ctx context.Context, prefix string) (*LeavingCertificate, error)
	FindActiveByMember(ctx context.Context, memberID uuid.UUID) (*LeavingCertificate, error)
	FindMember(ctx context.Context, memberID, churchID uuid.UUID) (*Member, error)
	// Insert fails with database.ErrDuplicateKey when the certificate number is taken.
	Insert(ctx context.Context, cert *LeavingCertificate) error
	FindByID(ctx context.Context, id, churchID uuid.UUID) (*LeavingCertificate, error)
	Update(ctx context.Context, id, churchID uuid.UUID, patch CertificatePatch) (*LeavingCertificate, error)
	DeleteByID(ctx context.Context, id, churchID uuid.UUID) (bool, error)
	ListByChurch(ctx context.Context, churchID uuid.UUID, filter CertificateFilter) ([]LeavingCertificate, error)
	// NextSequence bumps the counter for scope and returns max(counter, floor)+1.
	NextSequence(ctx context.Context, scope string, floor int) (int, error)
	RecordEvent(ctx context.Context, event *CertificateEvent) error
	ListEvents(ctx context.Context, certificateID, churchID uuid.UUID) ([]CertificateEvent, error)
	// Transaction runs fn against a store bound to one database transaction.
	Transaction(ctx context.Context, fn func(CertificateStore) error) error
}
