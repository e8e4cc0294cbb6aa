package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/auth"
	"github.com/aicodehub/aicodehub/internal/server/models"
	"github.com/aicodehub/aicodehub/internal/server/repositories/repomanager"
)

const (
	projectNameMaxLen = 100
	descriptionMaxLen = 2000
)

// ProjectService manages user-owned projects. Every operation takes the
// calling principal and enforces the ownership policy itself, so handlers
// cannot forget the check.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager) *ProjectService {
	return &ProjectService{db: db, repomanager: m}
}

func validateProjectName(name string) error {
	if name == "" || len(name) > projectNameMaxLen {
		return fmt.Errorf("%w: project name must be 1-%d characters", common.ErrValidation, projectNameMaxLen)
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > descriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters", common.ErrValidation, descriptionMaxLen)
	}
	return nil
}

// Create makes a new project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, p *auth.Principal, name string, description *string) (*models.Project, error) {
	if err := validateProjectName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	project, err := s.repomanager.Projects(s.db).Create(ctx, &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     p.ID,
	})
	if err != nil {
		return nil, common.ErrStorageUnavailable
	}
	return project, nil
}

// Get returns a single project. Non-owners get ErrForbidden rather than
// ErrNotFound, so a 403 confirms existence only to authenticated callers
// who already supplied a valid id.
func (s *ProjectService) Get(ctx context.Context, p *auth.Principal, id int64) (*models.Project, error) {
	project, err := s.repomanager.Projects(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrStorageUnavailable
	}
	if !auth.CanAccess(p, project.OwnerID) {
		return nil, common.ErrForbidden
	}
	return project, nil
}

// List returns the caller's projects; superusers see every project.
func (s *ProjectService) List(ctx context.Context, p *auth.Principal) ([]*models.Project, error) {
	repo := s.repomanager.Projects(s.db)

	var projects []*models.Project
	var err error
	if p.IsSuperuser {
		projects, err = repo.ListAll(ctx)
	} else {
		projects, err = repo.ListByOwner(ctx, p.ID)
	}
	if err != nil {
		return nil, common.ErrStorageUnavailable
	}
	return projects, nil
}

// Update changes a project's name and/or description. Nil fields are left
// unchanged.
func (s *ProjectService) Update(ctx context.Context, p *auth.Principal, id int64, name *string, description *string) (*models.Project, error) {
	if name != nil {
		if err := validateProjectName(*name); err != nil {
			return nil, err
		}
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	project, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		project.Name = *name
	}
	if description != nil {
		project.Description = description
	}

	if err := s.repomanager.Projects(s.db).Update(ctx, project); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrStorageUnavailable
	}
	return project, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	if err := s.repomanager.Projects(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrStorageUnavailable
	}
	return nil
}
