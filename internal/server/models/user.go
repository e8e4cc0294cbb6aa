// Package models defines the persistent entities managed by the server.
package models

import "time"

// User is a registered identity. PasswordHash is never rendered to any
// external representation; transport layers must build their own views.
type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
