package users

import (
	"context"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateEmail(ctx context.Context, id int64, email *string) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}
