package user

import (
	"errors"
	"time"
)

// User is a persisted staff account, keyed by email. Accounts are
// auto-provisioned the first time an asserted identity is seen.
type User struct {
	Email       string    `json:"email" gorm:"primaryKey"`
	DisplayName string    `json:"display_name" gorm:"column:display_name"`
	Permission  string    `json:"permission" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

var ErrUserNotFound = errors.New("user not found")
