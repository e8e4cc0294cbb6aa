package repomanager

import (
	"context"
	"database/sql"

	"github.com/aicodehub/aicodehub/internal/dbx"
	"github.com/aicodehub/aicodehub/internal/server/repositories/apiclients"
	"github.com/aicodehub/aicodehub/internal/server/repositories/mlmodels"
	"github.com/aicodehub/aicodehub/internal/server/repositories/projects"
	"github.com/aicodehub/aicodehub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	APIClients(db dbx.DBTX) apiclients.Repository
	Projects(db dbx.DBTX) projects.Repository
	Models(db dbx.DBTX) mlmodels.Repository
}
