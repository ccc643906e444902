package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RolePastor is the only account role; every registered user is the pastor of one church.
const RolePastor = "PASTOR"

// User is a pastor account. Each user belongs to exactly one church.
type User struct {
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         string         `gorm:"column:role;type:varchar(20);not null;default:'PASTOR'" json:"role"`
	ChurchID     uuid.UUID      `gorm:"column:church_id;type:uuid;not null;index" json:"churchId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
