// Package mlmodels provides a PostgreSQL-backed repository for registered
// machine-learning models and their artifact pointers.
package mlmodels

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

func (r *PostgresRepository) Create(ctx context.Context, model *models.Model) (*models.Model, error) {
	query := `
		INSERT INTO models (name, type, version, status, description, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		model.Name, model.Type, model.Version, model.Status, model.Description, model.OwnerID).
		Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return model, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Model, error) {
	query := `
		SELECT id, name, type, version, status, description, artifact_key, owner_id, created_at, updated_at
		FROM models
		WHERE id = $1
	`
	m := &models.Model{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.Name, &m.Type, &m.Version, &m.Status, &m.Description,
			&m.ArtifactKey, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Model, error) {
	query := `
		SELECT id, name, type, version, status, description, artifact_key, owner_id, created_at, updated_at
		FROM models
		WHERE owner_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Model, error) {
	query := `
		SELECT id, name, type, version, status, description, artifact_key, owner_id, created_at, updated_at
		FROM models
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, model *models.Model) error {
	query := `
		UPDATE models SET name = $2, type = $3, version = $4, status = $5, description = $6, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		model.ID, model.Name, model.Type, model.Version, model.Status, model.Description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetArtifactKey records the object-storage key of an uploaded artifact and
// moves the model into the given status.
func (r *PostgresRepository) SetArtifactKey(ctx context.Context, id int64, key string, status string) error {
	query := `
		UPDATE models SET artifact_key = $2, status = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, key, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM models
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func collect(rows *sql.Rows) ([]*models.Model, error) {
	defer rows.Close()

	result := make([]*models.Model, 0)
	for rows.Next() {
		m := &models.Model{}
		err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Version, &m.Status, &m.Description,
			&m.ArtifactKey, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
