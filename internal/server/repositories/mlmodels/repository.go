package mlmodels

import (
	"context"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, model *models.Model) (*models.Model, error)
	GetByID(ctx context.Context, id int64) (*models.Model, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Model, error)
	ListAll(ctx context.Context) ([]*models.Model, error)
	Update(ctx context.Context, model *models.Model) error
	SetArtifactKey(ctx context.Context, id int64, key string, status string) error
	Delete(ctx context.Context, id int64) error
}
