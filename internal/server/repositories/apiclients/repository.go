package apiclients

import (
	"context"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, client *models.APIClient) (*models.APIClient, error)
	GetByClientID(ctx context.Context, clientID string) (*models.APIClient, error)
}
