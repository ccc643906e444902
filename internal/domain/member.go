package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Child is a dependant listed on a family member record.
type Child struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

// Member is a roster entry: an individual, or a family head with children.
type Member struct {
	MemberID   uuid.UUID                  `gorm:"column:member_id;type:uuid;primaryKey" json:"id"`
	ChurchID   uuid.UUID                  `gorm:"column:church_id;type:uuid;not null;index" json:"churchId"`
	PastorID   *uuid.UUID                 `gorm:"column:pastor_id;type:uuid" json:"pastorId"`
	FirstName  string                     `gorm:"column:first_name;not null" json:"firstName"`
	MiddleName string                     `gorm:"column:middle_name" json:"middleName"`
	LastName   string                     `gorm:"column:last_name;not null" json:"lastName"`
	Phone      string                     `gorm:"column:phone;not null" json:"phone"`
	IsFamily   bool                       `gorm:"column:is_family;not null;default:false" json:"isFamily"`
	Children   datatypes.JSONSlice[Child] `gorm:"column:children" json:"children"`
	CreatedAt  time.Time                  `json:"createdAt"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

func (Member) TableName() string {
	return "Members"
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	if m.Children == nil {
		m.Children = datatypes.JSONSlice[Child]{}
	}
	return nil
}

// FullName joins first, middle and last name, skipping an empty middle name.
func (m *Member) FullName() string {
	parts := []string{m.FirstName}
	if strings.TrimSpace(m.MiddleName) != "" {
		parts = append(parts, strings.TrimSpace(m.MiddleName))
	}
	parts = append(parts, m.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}
