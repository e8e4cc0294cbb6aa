package models

import "time"

// Model lifecycle states.
const (
	ModelStatusDraft    = "draft"
	ModelStatusReady    = "ready"
	ModelStatusArchived = "archived"
)

// Model is a registered machine-learning model. ArtifactKey points to the
// object-storage key of the uploaded artifact, if any; the server itself
// never stores artifact bytes.
type Model struct {
	ID          int64
	Name        string
	Type        string
	Version     string
	Status      string
	Description *string
	ArtifactKey *string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
