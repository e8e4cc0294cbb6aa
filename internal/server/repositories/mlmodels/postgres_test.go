package mlmodels

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(9), now, now)
	mock.ExpectQuery(`INSERT\s+INTO\s+models`).
		WithArgs("resnet", "vision", "1.0", models.ModelStatusDraft, nil, int64(7)).
		WillReturnRows(rows)

	m := &models.Model{Name: "resnet", Type: "vision", Version: "1.0", Status: models.ModelStatusDraft, OwnerID: 7}
	got, err := repo.Create(context.Background(), m)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 9 {
		t.Fatalf("unexpected model: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+models\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetArtifactKey_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+models\s+SET\s+artifact_key`).
		WithArgs(int64(9), "models/2026/08/abc", models.ModelStatusReady).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetArtifactKey(context.Background(), 9, "models/2026/08/abc", models.ModelStatusReady); err != nil {
		t.Fatalf("SetArtifactKey error: %v", err)
	}
}
