package models

import "time"

// Project is a user-owned workspace grouping model artifacts.
type Project struct {
	ID          int64
	Name        string
	Description *string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
