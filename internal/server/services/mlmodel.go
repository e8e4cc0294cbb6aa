package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/auth"
	sc "github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/models"
	"github.com/aicodehub/aicodehub/internal/server/repositories/repomanager"
)

// Seams for AWS SDK calls so tests can intercept presigning without a live
// S3 endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

var modelStatuses = map[string]bool{
	models.ModelStatusDraft:    true,
	models.ModelStatusReady:    true,
	models.ModelStatusArchived: true,
}

// ModelService manages registered ML models and their artifact storage.
// Artifact bytes never pass through the server; clients upload and download
// directly against presigned object-storage URLs.
type ModelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewModelService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *ModelService {
	return &ModelService{db: db, repomanager: m, config: config}
}

// GetRandomArtifactKey returns a fresh object key, partitioned by date so
// bucket listings stay manageable.
func GetRandomArtifactKey() string {
	d := time.Now()
	return fmt.Sprintf("models/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ModelService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *ModelService) getPresignedPutURL(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomArtifactKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (s *ModelService) getPresignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func validateModelInput(name, modelType, version string) error {
	if name == "" || len(name) > projectNameMaxLen {
		return fmt.Errorf("%w: model name must be 1-%d characters", common.ErrValidation, projectNameMaxLen)
	}
	if modelType == "" || len(modelType) > 50 {
		return fmt.Errorf("%w: model type must be 1-50 characters", common.ErrValidation)
	}
	if version == "" || len(version) > 50 {
		return fmt.Errorf("%w: model version must be 1-50 characters", common.ErrValidation)
	}
	return nil
}

// Create registers a new model in draft status owned by the caller.
func (s *ModelService) Create(ctx context.Context, p *auth.Principal, name, modelType, version string, description *string) (*models.Model, error) {
	if err := validateModelInput(name, modelType, version); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	model, err := s.repomanager.Models(s.db).Create(ctx, &models.Model{
		Name:        name,
		Type:        modelType,
		Version:     version,
		Status:      models.ModelStatusDraft,
		Description: description,
		OwnerID:     p.ID,
	})
	if err != nil {
		return nil, common.ErrStorageUnavailable
	}
	return model, nil
}

// Get returns a single model, applying the ownership policy.
func (s *ModelService) Get(ctx context.Context, p *auth.Principal, id int64) (*models.Model, error) {
	model, err := s.repomanager.Models(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrStorageUnavailable
	}
	if !auth.CanAccess(p, model.OwnerID) {
		return nil, common.ErrForbidden
	}
	return model, nil
}

// List returns the caller's models; superusers see every model.
func (s *ModelService) List(ctx context.Context, p *auth.Principal) ([]*models.Model, error) {
	repo := s.repomanager.Models(s.db)

	var items []*models.Model
	var err error
	if p.IsSuperuser {
		items, err = repo.ListAll(ctx)
	} else {
		items, err = repo.ListByOwner(ctx, p.ID)
	}
	if err != nil {
		return nil, common.ErrStorageUnavailable
	}
	return items, nil
}

// Update changes model metadata. Nil fields are left unchanged; status must
// be one of the known lifecycle states.
func (s *ModelService) Update(ctx context.Context, p *auth.Principal, id int64, name, modelType, version, status *string, description *string) (*models.Model, error) {
	if status != nil && !modelStatuses[*status] {
		return nil, fmt.Errorf("%w: unknown model status %q", common.ErrValidation, *status)
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	model, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		model.Name = *name
	}
	if modelType != nil {
		model.Type = *modelType
	}
	if version != nil {
		model.Version = *version
	}
	if status != nil {
		model.Status = *status
	}
	if description != nil {
		model.Description = description
	}

	if err := validateModelInput(model.Name, model.Type, model.Version); err != nil {
		return nil, err
	}

	if err := s.repomanager.Models(s.db).Update(ctx, model); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrStorageUnavailable
	}
	return model, nil
}

// Delete removes a model record. The stored artifact, if any, is left for
// bucket lifecycle rules to reclaim.
func (s *ModelService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	if err := s.repomanager.Models(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrStorageUnavailable
	}
	return nil
}

// GetArtifactUploadURL reserves a storage key for the model's artifact and
// returns a presigned PUT URL. The key is recorded immediately and the model
// moves to ready status; the client uploads directly to object storage.
func (s *ModelService) GetArtifactUploadURL(ctx context.Context, p *auth.Principal, id int64) (string, error) {
	model, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}

	key, url, err := s.getPresignedPutURL(ctx)
	if err != nil {
		return "", fmt.Errorf("error presigning upload: %w", err)
	}

	if err := s.repomanager.Models(s.db).SetArtifactKey(ctx, model.ID, key, models.ModelStatusReady); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrStorageUnavailable
	}
	return url, nil
}

// GetArtifactDownloadURL returns a presigned GET URL for the model's stored
// artifact.
func (s *ModelService) GetArtifactDownloadURL(ctx context.Context, p *auth.Principal, id int64) (string, error) {
	model, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}
	if model.ArtifactKey == nil {
		return "", common.ErrNotFound
	}

	url, err := s.getPresignedGetURL(ctx, *model.ArtifactKey)
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return url, nil
}
