// Package projects provides a PostgreSQL-backed repository for project records.
package projects

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

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, project.Name, project.Description, project.OwnerID).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return project, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&project.ID, &project.Name, &project.Description, &project.OwnerID,
			&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return project, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, project.ID, project.Name, project.Description); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM projects
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func collect(rows *sql.Rows) ([]*models.Project, error) {
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
