package models

import "time"

// APIClient is a machine identity for the client-credentials flow.
// ClientID is the public identifier carried as the subject of kind=client
// tokens; SecretHash stores a bcrypt digest of the client secret.
type APIClient struct {
	ID         int64
	ClientID   string
	Name       string
	SecretHash string
	IsActive   bool
	CreatedAt  time.Time
}
