package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leaving certificate reasons.
const (
	ReasonTransfer   = "transfer"
	ReasonRelocation = "relocation"
	ReasonPersonal   = "personal"
	ReasonOther      = "other"
)

// Leaving certificate statuses. New certificates always start active.
const (
	CertificateActive   = "active"
	CertificateRevoked  = "revoked"
	CertificateArchived = "archived"
)

// CertificateReasons lists the accepted reason values in display order.
var CertificateReasons = []string{ReasonTransfer, ReasonRelocation, ReasonPersonal, ReasonOther}

// CertificateStatuses lists the accepted status values in display order.
var CertificateStatuses = []string{CertificateActive, CertificateRevoked, CertificateArchived}

// LeavingCertificate documents a member leaving the church.
// CertificateNumber is assigned once at issuance and never updated.
type LeavingCertificate struct {
	CertificateID     uuid.UUID `gorm:"column:certificate_id;type:uuid;primaryKey" json:"id"`
	MemberID          uuid.UUID `gorm:"column:member_id;type:uuid;not null;index:idx_leaving_member_status" json:"memberId"`
	ChurchID          uuid.UUID `gorm:"column:church_id;type:uuid;not null;index" json:"churchId"`
	PastorID          uuid.UUID `gorm:"column:pastor_id;type:uuid;not null" json:"pastorId"`
	LeavingDate       time.Time `gorm:"column:leaving_date;not null;index" json:"leavingDate"`
	IssueDate         time.Time `gorm:"column:issue_date;not null" json:"issueDate"`
	Reason            string    `gorm:"column:reason;type:varchar(20);not null" json:"reason"`
	TransferChurch    *string   `gorm:"column:transfer_church" json:"transferChurch,omitempty"`
	Notes             *string   `gorm:"column:notes" json:"notes,omitempty"`
	CertificateNumber string    `gorm:"column:certificate_number;not null;uniqueIndex" json:"certificateNumber"`
	Status            string    `gorm:"column:status;type:varchar(20);not null;default:'active';index:idx_leaving_member_status" json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (LeavingCertificate) TableName() string {
	return "LeavingCertificates"
}

func (l *LeavingCertificate) BeforeCreate(tx *gorm.DB) error {
	if l.CertificateID == uuid.Nil {
		l.CertificateID = uuid.New()
	}
	return nil
}

// CertificateCounter holds the last sequence number handed out for one numbering scope
// ("global", or a YYYYMM key when numbering restarts every month).
type CertificateCounter struct {
	Scope     string    `gorm:"column:scope;type:varchar(16);primaryKey" json:"scope"`
	Value     int       `gorm:"column:value;not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CertificateCounter) TableName() string {
	return "CertificateCounters"
}
