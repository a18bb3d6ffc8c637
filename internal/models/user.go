// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role identifies the permission tier of a user.
type Role string

const (
	// RoleAdmin can manage every resource.
	RoleAdmin Role = "admin"
	// RoleAuthor can publish articles.
	RoleAuthor Role = "author"
	// RoleUser is the default tier for signed-up readers.
	RoleUser Role = "user"
)

// User represents an identity record in the Chronicle application.
// The password hash is never serialized; session snapshots carry the
// password-stripped copy produced by Snapshot.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:100" json:"-"`
	Role      Role      `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	Avatar    string    `gorm:"size:500" json:"avatar,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a copy of the user with the password hash stripped.
// This is the shape persisted into session storage and returned to clients.
func (u *User) Snapshot() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	return &cp
}
