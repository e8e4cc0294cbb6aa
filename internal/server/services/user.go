// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token refresh, the
// client-credentials exchange, and bearer-token authentication for the
// access guard.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/dbx"
	"github.com/aicodehub/aicodehub/internal/server/auth"
	"github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/models"
	"github.com/aicodehub/aicodehub/internal/server/repositories/repomanager"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	// bcrypt only hashes the first 72 bytes; longer input is rejected up
	// front instead of truncated silently.
	passwordMaxBytes = 72
)

// dummyHash is compared against when the looked-up identity does not exist,
// so the login path costs roughly the same whether the username is known or
// not. bcrypt hash of an unguessable throwaway value.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService provides authentication-related operations:
// - Register: validate input, create identities, mint tokens
// - Login: verify credentials and mint tokens
// - Refresh: re-issue a token for an authenticated principal
// - Authenticate: resolve a bearer token into a Principal (access guard core)
// - ExchangeClientCredentials / CreateAPIClient: machine-token flow
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		jwtSecret:      []byte(cfg.SecretKey),
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// Register creates a new identity and returns it along with a fresh token.
// Validation runs before any store access; the uniqueness pre-checks, the
// insert, and the constraint backstop all live in one transaction, so a
// concurrent registration racing on the same username or email loses with
// ErrUsernameTaken/ErrEmailTaken rather than corrupting data.
func (s *UserService) Register(ctx context.Context, username string, email *string, password string) (*models.User, string, error) {
	if err := validateUsername(username); err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}
	if email != nil {
		if err := validateEmail(*email); err != nil {
			return nil, "", err
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return common.ErrUsernameTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error checking username: %w", err)
		}

		if email != nil {
			if _, err := repo.GetByEmail(ctx, *email); err == nil {
				return common.ErrEmailTaken
			} else if !errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("error checking email: %w", err)
			}
		}

		created, err := repo.Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			IsSuperuser:  false,
		})
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.Username, auth.TokenKindUser)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and, on success, returns the identity and a
// new token. Unknown username, wrong password, and inactive identity all
// yield the same ErrInvalidCredentials so responses cannot be used to
// enumerate usernames.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn a comparison anyway to keep timing flat.
			auth.CheckPassword(password, dummyHash)
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrStorageUnavailable
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.Username, auth.TokenKindUser)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Refresh re-issues a token for an already-authenticated principal without
// re-checking the password. Callers must gate it behind Authenticate.
func (s *UserService) Refresh(ctx context.Context, p *auth.Principal) (string, error) {
	if p == nil {
		return "", common.ErrInvalidCredential
	}
	return s.issueToken(p.Name, p.Kind)
}

// Authenticate resolves a raw bearer token into a Principal. Each failure
// mode keeps its own sentinel: missing, malformed, expired, invalid
// signature, unknown subject, inactive identity.
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*auth.Principal, error) {
	if tokenString == "" {
		return nil, common.ErrMissingCredential
	}

	subject, kind, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	switch kind {
	case auth.TokenKindUser:
		user, err := s.repomanager.Users(s.db).GetByUsername(ctx, subject)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrUnknownIdentity
			}
			return nil, common.ErrStorageUnavailable
		}
		if !user.IsActive {
			return nil, common.ErrInactiveIdentity
		}
		return &auth.Principal{
			ID:          user.ID,
			Name:        user.Username,
			IsSuperuser: user.IsSuperuser,
			Kind:        auth.TokenKindUser,
		}, nil

	case auth.TokenKindClient:
		client, err := s.repomanager.APIClients(s.db).GetByClientID(ctx, subject)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrUnknownIdentity
			}
			return nil, common.ErrStorageUnavailable
		}
		if !client.IsActive {
			return nil, common.ErrInactiveIdentity
		}
		return &auth.Principal{
			ID:   client.ID,
			Name: client.ClientID,
			Kind: auth.TokenKindClient,
		}, nil

	default:
		return nil, common.ErrInvalidCredential
	}
}

// GetUser loads the full identity record behind a user principal.
func (s *UserService) GetUser(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil || p.Kind != auth.TokenKindUser {
		return nil, common.ErrUnknownIdentity
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownIdentity
		}
		return nil, common.ErrStorageUnavailable
	}
	return user, nil
}

// UpdateProfile changes the caller's email and/or password. Email uniqueness
// is re-checked in the same transaction as the write; a password change
// requires the current password.
func (s *UserService) UpdateProfile(ctx context.Context, p *auth.Principal, email *string, currentPassword, newPassword string) (*models.User, error) {
	if p == nil || p.Kind != auth.TokenKindUser {
		return nil, common.ErrUnknownIdentity
	}
	if email != nil {
		if err := validateEmail(*email); err != nil {
			return nil, err
		}
	}
	if newPassword != "" {
		if err := validatePassword(newPassword); err != nil {
			return nil, err
		}
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnknownIdentity
			}
			return err
		}

		if newPassword != "" {
			if !auth.CheckPassword(currentPassword, user.PasswordHash) {
				return common.ErrInvalidCredentials
			}
			hash, err := auth.HashPassword(newPassword)
			if err != nil {
				return common.ErrInternal
			}
			if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				return err
			}
			user.PasswordHash = hash
		}

		if email != nil {
			if existing, err := repo.GetByEmail(ctx, *email); err == nil && existing.ID != user.ID {
				return common.ErrEmailTaken
			} else if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if err := repo.UpdateEmail(ctx, user.ID, email); err != nil {
				return err
			}
			user.Email = email
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExchangeClientCredentials trades a client id/secret pair for a machine
// token of kind=client. Unknown client, wrong secret, and inactive client
// are indistinguishable to the caller.
func (s *UserService) ExchangeClientCredentials(ctx context.Context, clientID, secret string) (string, error) {
	client, err := s.repomanager.APIClients(s.db).GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			auth.CheckPassword(secret, dummyHash)
			return "", common.ErrInvalidCredentials
		}
		return "", common.ErrStorageUnavailable
	}

	if !auth.CheckPassword(secret, client.SecretHash) {
		return "", common.ErrInvalidCredentials
	}
	if !client.IsActive {
		return "", common.ErrInvalidCredentials
	}

	return s.issueToken(client.ClientID, auth.TokenKindClient)
}

// CreateAPIClient registers a new machine identity and returns the plaintext
// secret exactly once; only its bcrypt hash is stored.
func (s *UserService) CreateAPIClient(ctx context.Context, name string) (*models.APIClient, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("%w: client name must not be empty", common.ErrValidation)
	}

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, "", common.ErrInternal
	}
	hash, err := auth.HashPassword(secret)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	client, err := s.repomanager.APIClients(s.db).Create(ctx, &models.APIClient{
		ClientID:   uuid.NewString(),
		Name:       name,
		SecretHash: hash,
		IsActive:   true,
	})
	if err != nil {
		return nil, "", err
	}
	return client, secret, nil
}

// EnsureSuperuser creates the bootstrap superuser if it does not exist yet.
// A no-op when username is empty or the account is already present.
func (s *UserService) EnsureSuperuser(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}

	if err := validatePassword(password); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("error checking superuser: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return common.ErrInternal
	}

	var emailPtr *string
	if email != "" {
		emailPtr = &email
	}

	_, err = repo.Create(ctx, &models.User{
		Username:     username,
		Email:        emailPtr,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
	})
	// Another instance may have bootstrapped concurrently.
	if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
		return nil
	}
	return err
}

// --- helpers below ---

func (s *UserService) issueToken(subject string, kind auth.TokenKind) (string, error) {
	token, err := auth.GenerateToken(subject, kind, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

func validateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return fmt.Errorf("%w: username must be %d-%d characters", common.ErrValidation, usernameMinLen, usernameMaxLen)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < passwordMinLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, passwordMinLen)
	}
	if len(password) > passwordMaxBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, passwordMaxBytes)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}
