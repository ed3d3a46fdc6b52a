package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/rentroll/internal/auth"
	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// RegisterInput is the body of a password registration.
type RegisterInput struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,min=6,max=72"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=LANDLORD TENANT ADMIN"`
}

// LoginInput is the body of a password login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginInput is the body of a Google sign-in. A non-empty Role
// registers the account when it does not exist yet.
type GoogleLoginInput struct {
	Credential string `json:"credential"`
	Role       string `json:"role"`
}

// Session is a signed access token and the user it was issued to.
type Session struct {
	AccessToken string
	User        *models.User
}

// AuthService defines account and token operations.
type AuthService interface {
	// Register creates an account, with a tenant record for TENANT users,
	// and signs the new user in. A taken email returns ErrConflict.
	Register(ctx context.Context, in RegisterInput) (*Session, error)

	// Login checks the password and returns ErrUnauthorized on mismatch.
	Login(ctx context.Context, in LoginInput) (*Session, error)

	// GoogleLogin signs in with a verified Google ID token, creating the
	// account on first use when a role is supplied.
	GoogleLogin(ctx context.Context, in GoogleLoginInput) (*Session, error)

	// Authenticate resolves a bearer token to the acting user.
	Authenticate(ctx context.Context, token string) (*authz.Actor, error)

	// CurrentUser returns the actor's account.
	CurrentUser(ctx context.Context, actor authz.Actor) (*models.User, error)
}

type authService struct {
	users    repository.UserRepository
	tenants  repository.TenantRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	verifier auth.IdentityVerifier
	log      *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	users repository.UserRepository,
	tenants repository.TenantRepository,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	verifier auth.IdentityVerifier,
	log *logger.Logger,
) AuthService {
	return &authService{
		users:    users,
		tenants:  tenants,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: Email already registered", ErrConflict)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Role:     models.NormalizeRole(string(in.Role)),
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil || !s.hasher.Check(in.Password, user.Password) {
		s.log.Warn("Failed login attempt", map[string]interface{}{
			"email": normalizeEmail(in.Email),
		})
		return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthorized)
	}
	return s.issue(user)
}

func (s *authService) GoogleLogin(ctx context.Context, in GoogleLoginInput) (*Session, error) {
	if strings.TrimSpace(in.Credential) == "" {
		return nil, fmt.Errorf("%w: Missing Google credential", ErrBadRequest)
	}

	identity, err := s.verifier.Verify(ctx, in.Credential)
	switch {
	case errors.Is(err, auth.ErrGoogleNotConfigured):
		return nil, fmt.Errorf("%w: Google OAuth not configured", ErrNotConfigured)
	case errors.Is(err, auth.ErrInvalidCredential):
		return nil, fmt.Errorf("%w: Invalid Google token", ErrBadRequest)
	case err != nil:
		return nil, fmt.Errorf("google authentication failed: %w", err)
	}

	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: Google account has no email", ErrBadRequest)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user != nil {
		return s.issue(user)
	}

	if strings.TrimSpace(in.Role) == "" {
		return nil, fmt.Errorf("%w: No account found for this Google email. Please register first.", ErrNotFound)
	}

	hash, err := s.hasher.Hash(auth.RandomPassword())
	if err != nil {
		return nil, err
	}
	name := identity.Name
	if name == "" {
		name = "Google User"
	}
	user = &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.NormalizeRole(in.Role),
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User registered through Google", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return s.issue(user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*authz.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: Could not validate credentials", ErrUnauthorized)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	// A changed email invalidates outstanding tokens.
	if user == nil || user.Email != claims.Subject {
		return nil, fmt.Errorf("%w: Could not validate credentials", ErrUnauthorized)
	}

	actor := &authz.Actor{UserID: user.ID, Role: user.Role, Email: user.Email}
	if user.Role == models.RoleTenant {
		tenant, err := s.tenants.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tenant: %w", err)
		}
		if tenant != nil {
			id := tenant.ID
			actor.TenantID = &id
		}
	}
	return actor, nil
}

func (s *authService) CurrentUser(ctx context.Context, actor authz.Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, notFound("User")
	}
	return user, nil
}

// create inserts user, with a tenant record when the user is a tenant.
func (s *authService) create(ctx context.Context, user *models.User) error {
	var tenant *models.Tenant
	if user.Role == models.RoleTenant {
		tenant = &models.Tenant{}
	}
	if err := s.users.Create(ctx, user, tenant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: Email already registered", ErrConflict)
		}
		s.log.Error("Failed to create user", err, nil)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *authService) issue(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
