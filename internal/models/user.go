package models

import (
	"strings"
	"time"
)

// User is the account behind both the member board and the staff dashboard.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:254;not null;default:''" json:"email"`
	FirstName  string     `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName   string     `gorm:"size:150;not null;default:''" json:"last_name"`
	Password   string     `gorm:"not null" json:"-"` // bcrypt hash
	IsActive   bool       `gorm:"not null" json:"is_active"`
	IsStaff    bool       `gorm:"not null" json:"is_staff"`
	LastLogin  *time.Time `gorm:"index" json:"last_login"`
	DateJoined time.Time  `gorm:"autoCreateTime;index" json:"date_joined"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
