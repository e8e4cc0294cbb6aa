package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

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

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "is_active", "is_superuser", "created_at", "updated_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*is_active,\s*is_superuser\)`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now)
	mock.ExpectQuery(q).
		WithArgs("alice", nil, "hash", true, false).
		WillReturnRows(rows)

	u := &models.User{Username: "alice", PasswordHash: "hash", IsActive: true}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_UsernameUniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", nil, "hash", true, false).
		WillReturnError(pgErr)

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "hash", IsActive: true})
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestCreate_EmailUniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	email := "a@x.com"
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("bob", email, "hash", true, false).
		WillReturnError(pgErr)

	_, err := repo.Create(context.Background(), &models.User{Username: "bob", Email: &email, PasswordHash: "hash", IsActive: true})
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", nil, "hash", true, false).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "hash", IsActive: true})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(int64(1), "alice", nil, "hash", true, false, now, now)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != 1 || got.Username != "alice" || !got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEmail_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	email := "taken@x.com"
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	mock.ExpectExec(`UPDATE\s+users\s+SET\s+email`).
		WithArgs(int64(1), email).
		WillReturnError(pgErr)

	err := repo.UpdateEmail(context.Background(), 1, &email)
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdatePasswordHash_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs(int64(1), "newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePasswordHash(context.Background(), 1, "newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}
}
