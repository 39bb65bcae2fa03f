package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles known to the API
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered account of the catalog
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email" bson:"email"`
	PasswordHash string    `gorm:"not null" json:"-" bson:"passwordHash"` // Never expose password in JSON
	Name         string    `gorm:"not null" json:"name" bson:"name"`
	Role         string    `gorm:"type:varchar(20);default:'student'" json:"role" bson:"role"` // student, admin
	TokenVersion int       `gorm:"default:0" json:"-" bson:"tokenVersion"`                     // Increment to invalidate all user tokens
}

// BeforeCreate assigns an id when the caller did not
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.EnsureID()
	return nil
}

// EnsureID assigns a UUID when ID is empty
func (u *User) EnsureID() {
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV7()).String()
	}
}

// IsAdmin reports whether the user may use admin endpoints
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
