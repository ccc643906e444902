package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leave request types.
const (
	LeaveSick     = "sick"
	LeavePersonal = "personal"
	LeaveVacation = "vacation"
)

// Leave request statuses. Only pending requests can be approved or rejected.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// LeaveRequest records a temporary absence of a member.
type LeaveRequest struct {
	LeaveID   uuid.UUID `gorm:"column:leave_id;type:uuid;primaryKey" json:"id"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;index" json:"memberId"`
	ChurchID  uuid.UUID `gorm:"column:church_id;type:uuid;not null;index" json:"churchId"`
	Type      string    `gorm:"column:type;type:varchar(20);not null" json:"type"`
	StartDate time.Time `gorm:"column:start_date;not null" json:"startDate"`
	EndDate   time.Time `gorm:"column:end_date;not null" json:"endDate"`
	Reason    string    `gorm:"column:reason;not null" json:"reason"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	Member    *Member   `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LeaveRequest) TableName() string {
	return "LeaveRequests"
}

func (l *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if l.LeaveID == uuid.Nil {
		l.LeaveID = uuid.New()
	}
	return nil
}
