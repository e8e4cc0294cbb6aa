// Package apiclients provides a PostgreSQL-backed repository for machine
// credentials used by the client-credentials token flow.
package apiclients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/dbx"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new API client and fills in its generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, client *models.APIClient) (*models.APIClient, error) {
	query := `
		INSERT INTO api_clients (client_id, name, secret_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		client.ClientID, client.Name, client.SecretHash, client.IsActive).
		Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return client, nil
}

// GetByClientID returns the client row for the given public identifier.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) GetByClientID(ctx context.Context, clientID string) (*models.APIClient, error) {
	query := `
		SELECT id, client_id, name, secret_hash, is_active, created_at
		FROM api_clients
		WHERE client_id = $1
	`
	client := &models.APIClient{}
	err := r.db.QueryRowContext(ctx, query, clientID).
		Scan(&client.ID, &client.ClientID, &client.Name, &client.SecretHash, &client.IsActive, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return client, nil
}
