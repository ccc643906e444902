package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate event types.
const (
	EventCreated = "CREATED"
	EventUpdated = "UPDATED"
	EventDeleted = "DELETED"
)

// CertificateEvent is an audit entry for a leaving certificate.
// Events outlive the certificate they describe, so there is no foreign key.
type CertificateEvent struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"id"`
	CertificateID uuid.UUID      `gorm:"column:certificate_id;type:uuid;not null;index" json:"certificateId"`
	ChurchID      uuid.UUID      `gorm:"column:church_id;type:uuid;not null;index" json:"churchId"`
	EventType     string         `gorm:"column:event_type;type:varchar(20);not null" json:"eventType"`
	ActorID       *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actorId"`
	EventData     datatypes.JSON `gorm:"column:event_data" json:"eventData"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (CertificateEvent) TableName() string {
	return "CertificateEvents"
}

func (e *CertificateEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
