package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

const errInvalidCredentials = "invalid credentials"

// AuthService coordinates admin registration, login and token verification.
type AuthService struct {
	admins         repository.AdminRepository
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	allowedDomains []string
	now            func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AdminRepo repository.AdminRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		admins:         deps.AdminRepo,
		tokenMgr:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost:     cfg.Auth.BcryptCost,
		allowedDomains: cfg.Auth.AllowedEmailDomains,
		now:            time.Now,
	}
}

type signupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// Signup registers a new admin in domain d and returns a fresh token.
func (s *AuthService) Signup(ctx context.Context, d domain.Domain, name, email, password string) (*domain.Admin, domain.IssuedToken, error) {
	if !d.Valid() {
		return nil, domain.IssuedToken{}, apperrors.NewValidationError("unknown domain", map[string]any{"domain": string(d)})
	}
	input := signupInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := validateStruct("invalid signup request", input); err != nil {
		return nil, domain.IssuedToken{}, err
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, domain.IssuedToken{}, apperrors.NewValidationError("invalid signup request", map[string]any{"password": "must be at most 72 bytes"})
	}
	if !s.emailAllowed(input.Email) {
		return nil, domain.IssuedToken{}, apperrors.NewValidationError("invalid signup request", map[string]any{"email": "email domain is not allowed"})
	}

	if _, err := s.admins.GetByEmail(ctx, d, input.Email); err == nil {
		return nil, domain.IssuedToken{}, apperrors.NewConflict("email already registered", map[string]any{"domain": string(d)})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.IssuedToken{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Domain:       d,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.IssuedToken{}, apperrors.NewConflict("email already registered", map[string]any{"domain": string(d)})
		}
		return nil, domain.IssuedToken{}, err
	}

	token, err := s.tokenMgr.GenerateToken(admin.ID, d)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return admin, token, nil
}

// Login authenticates an admin of domain d.
func (s *AuthService) Login(ctx context.Context, d domain.Domain, email, password string) (*domain.Admin, domain.IssuedToken, error) {
	if !d.Valid() {
		return nil, domain.IssuedToken{}, apperrors.NewValidationError("unknown domain", map[string]any{"domain": string(d)})
	}
	admin, err := s.admins.GetByEmail(ctx, d, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		// Keep the timing of unknown emails close to a wrong password.
		_ = auth.ComparePassword(s.dummyPasswordHash(), password)
		return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(errInvalidCredentials)
	}
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(errInvalidCredentials)
	}

	token, err := s.tokenMgr.GenerateToken(admin.ID, d)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return admin, token, nil
}

// Verify checks a token and returns the identity it carries.
func (s *AuthService) Verify(token string) (domain.TokenIdentity, error) {
	identity, err := s.tokenMgr.Verify(token)
	if err != nil {
		return domain.TokenIdentity{}, apperrors.NewUnauthorized("invalid or expired token")
	}
	return identity, nil
}

// Authorize verifies token, requires it to belong to domain d and requires
// the admin it names to still exist.
func (s *AuthService) Authorize(ctx context.Context, token string, d domain.Domain) (domain.TokenIdentity, error) {
	identity, err := s.Verify(token)
	if err != nil {
		return domain.TokenIdentity{}, err
	}
	if identity.Domain != d {
		return domain.TokenIdentity{}, apperrors.NewForbidden("token is not valid for the " + string(d) + " domain")
	}
	if _, err := s.admins.GetByID(ctx, d, identity.AdminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenIdentity{}, apperrors.NewUnauthorized("invalid or expired token")
		}
		return domain.TokenIdentity{}, err
	}
	return identity, nil
}

func (s *AuthService) emailAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	return slices.Contains(s.allowedDomains, email[at+1:])
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword(uuid.NewString(), s.bcryptCost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
