package projects

import (
	"context"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error)
	ListAll(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
}
