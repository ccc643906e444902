package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Church is the tenant. It is created together with its pastor at registration.
type Church struct {
	ChurchID  uuid.UUID  `gorm:"column:church_id;type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	Address   *string    `gorm:"column:address" json:"address"`
	Phone     *string    `gorm:"column:phone" json:"phone"`
	Email     *string    `gorm:"column:email" json:"email"`
	PastorID  *uuid.UUID `gorm:"column:pastor_id;type:uuid" json:"pastorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Church) TableName() string {
	return "Churches"
}

func (c *Church) BeforeCreate(tx *gorm.DB) error {
	if c.ChurchID == uuid.Nil {
		c.ChurchID = uuid.New()
	}
	return nil
}
