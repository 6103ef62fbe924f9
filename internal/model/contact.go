package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactStatus enum constants
const (
	ContactNew       = "new"
	ContactContacted = "contacted"
	ContactConverted = "converted"
	ContactClosed    = "closed"
)

// Contact represents a customer inquiry from the public intake form.
// A converted contact is linked from the order created for it.
type Contact struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	EventDate    *time.Time     `json:"event_date"`
	EventAddress string         `gorm:"type:text" json:"event_address"`
	PartySize    int            `gorm:"default:0" json:"party_size"`
	Message      string         `gorm:"type:text" json:"message"`
	Source       string         `gorm:"type:varchar(50);default:'website'" json:"source"` // website, phone, referral
	Status       string         `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
