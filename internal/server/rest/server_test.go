package rest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/logging"
	"github.com/aicodehub/aicodehub/internal/server/auth"
	"github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

const testSecret = "k"

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthService is an in-memory stand-in for the user service, keeping
// the same sentinel-error semantics the handlers are expected to map.
type stubAuthService struct {
	users   map[string]*models.User
	hashes  map[string]string // username -> password (plaintext, test only)
	clients map[string]string // client_id -> secret
	nextID  int64
}

func newStubAuthService() *stubAuthService {
	return &stubAuthService{
		users:   map[string]*models.User{},
		hashes:  map[string]string{},
		clients: map[string]string{},
	}
}

func (s *stubAuthService) Register(ctx context.Context, username string, email *string, password string) (*models.User, string, error) {
	if len(username) < 3 || len(password) < 8 {
		return nil, "", common.ErrValidation
	}
	if _, ok := s.users[username]; ok {
		return nil, "", common.ErrUsernameTaken
	}
	s.nextID++
	u := &models.User{ID: s.nextID, Username: username, Email: email, IsActive: true}
	s.users[username] = u
	s.hashes[username] = password
	token, err := auth.GenerateToken(username, auth.TokenKindUser, []byte(testSecret), time.Hour)
	return u, token, err
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	u, ok := s.users[username]
	if !ok || s.hashes[username] != password || !u.IsActive {
		return nil, "", common.ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(username, auth.TokenKindUser, []byte(testSecret), time.Hour)
	return u, token, err
}

func (s *stubAuthService) Refresh(ctx context.Context, p *auth.Principal) (string, error) {
	return auth.GenerateToken(p.Name, p.Kind, []byte(testSecret), time.Hour)
}

func (s *stubAuthService) Authenticate(ctx context.Context, tokenString string) (*auth.Principal, error) {
	if tokenString == "" {
		return nil, common.ErrMissingCredential
	}
	subject, kind, err := auth.ParseToken(tokenString, []byte(testSecret))
	if err != nil {
		return nil, err
	}
	u, ok := s.users[subject]
	if !ok {
		return nil, common.ErrUnknownIdentity
	}
	if !u.IsActive {
		return nil, common.ErrInactiveIdentity
	}
	return &auth.Principal{ID: u.ID, Name: u.Username, IsSuperuser: u.IsSuperuser, Kind: kind}, nil
}

func (s *stubAuthService) GetUser(ctx context.Context, p *auth.Principal) (*models.User, error) {
	u, ok := s.users[p.Name]
	if !ok {
		return nil, common.ErrUnknownIdentity
	}
	return u, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, p *auth.Principal, email *string, currentPassword, newPassword string) (*models.User, error) {
	u, ok := s.users[p.Name]
	if !ok {
		return nil, common.ErrUnknownIdentity
	}
	if newPassword != "" {
		if s.hashes[p.Name] != currentPassword {
			return nil, common.ErrInvalidCredentials
		}
		s.hashes[p.Name] = newPassword
	}
	if email != nil {
		u.Email = email
	}
	return u, nil
}

func (s *stubAuthService) ExchangeClientCredentials(ctx context.Context, clientID, secret string) (string, error) {
	if s.clients[clientID] != secret || secret == "" {
		return "", common.ErrInvalidCredentials
	}
	return auth.GenerateToken(clientID, auth.TokenKindClient, []byte(testSecret), time.Hour)
}

func (s *stubAuthService) CreateAPIClient(ctx context.Context, name string) (*models.APIClient, string, error) {
	if name == "" {
		return nil, "", common.ErrValidation
	}
	s.nextID++
	clientID := "client-1"
	secret := "secret-1"
	s.clients[clientID] = secret
	return &models.APIClient{ID: s.nextID, ClientID: clientID, Name: name, IsActive: true}, secret, nil
}

// stubProjectService returns canned results.
type stubProjectService struct {
	project *models.Project
	items   []*models.Project
	err     error
}

func (s *stubProjectService) Create(ctx context.Context, p *auth.Principal, name string, description *string) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}
func (s *stubProjectService) Get(ctx context.Context, p *auth.Principal, id int64) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}
func (s *stubProjectService) List(ctx context.Context, p *auth.Principal) ([]*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}
func (s *stubProjectService) Update(ctx context.Context, p *auth.Principal, id int64, name *string, description *string) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}
func (s *stubProjectService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	return s.err
}

type stubModelService struct {
	model *models.Model
	items []*models.Model
	url   string
	err   error
}

func (s *stubModelService) Create(ctx context.Context, p *auth.Principal, name, modelType, version string, description *string) (*models.Model, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}
func (s *stubModelService) Get(ctx context.Context, p *auth.Principal, id int64) (*models.Model, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}
func (s *stubModelService) List(ctx context.Context, p *auth.Principal) ([]*models.Model, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}
func (s *stubModelService) Update(ctx context.Context, p *auth.Principal, id int64, name, modelType, version, status *string, description *string) (*models.Model, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}
func (s *stubModelService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	return s.err
}
func (s *stubModelService) GetArtifactUploadURL(ctx context.Context, p *auth.Principal, id int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}
func (s *stubModelService) GetArtifactDownloadURL(ctx context.Context, p *auth.Principal, id int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type testServerOpts struct {
	uniformAuthErrors bool
	projects          ProjectService
	models            ModelService
}

func newTestServer(t *testing.T, authSvc AuthService, opts testServerOpts) *Server {
	t.Helper()
	cfg := &config.Config{
		SecretKey:          testSecret,
		AccessTokenTTL:     time.Hour,
		CORSAllowedOrigins: "*",
		UniformAuthErrors:  opts.uniformAuthErrors,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(cfg, logger, authSvc, opts.projects, opts.models)
}
