package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bookshelf-auth/internal/auth"
	"github.com/spec-kit/bookshelf-auth/internal/config"
	"github.com/spec-kit/bookshelf-auth/internal/domain"
	"github.com/spec-kit/bookshelf-auth/internal/events"
	"github.com/spec-kit/bookshelf-auth/internal/repository"
	apperrors "github.com/spec-kit/bookshelf-auth/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	store      repository.Store
	codes      *VerificationService
	hasher     *auth.PasswordHasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators of the auth service.
// Dispatcher is optional.
type AuthDependencies struct {
	Store         repository.Store
	Verifications *VerificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:      deps.Store,
		codes:      deps.Verifications,
		hasher:     auth.NewPasswordHasher(cfg.PasswordAlgorithm, cfg.BcryptCost),
		tokenMgr:   auth.NewTokenManager(cfg.SessionSecret, cfg.SessionLifetime(), cfg.RenewalWindow()),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account after proving mailbox ownership. The code is
// consumed in the same transaction that creates the identity, so a failure
// after validation leaves the code usable.
func (s *AuthService) Register(ctx context.Context, email, password, code string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" || code == "" {
		return nil, auth.ErrMissingFields
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("hashing password", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}

	var failure error
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := s.codes.consume(ctx, tx, email, code); err != nil {
			if committedFailure(err) {
				failure = err
				return nil
			}
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return auth.ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("%w: %w", auth.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		Email:   user.Email,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Role: user.Role},
	})
	return withoutHash(user), nil
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.SessionToken, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.SessionToken{}, auth.ErrMissingFields
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// spend the same hashing work as a real comparison
		s.hasher.Verify(password, s.dummyPasswordHash())
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, Email: email})
		return nil, domain.SessionToken{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, domain.SessionToken{}, fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}

	if !user.Active() {
		s.publish(ctx, events.Event{Type: events.EventLoginSuspended, Email: email, UserID: user.ID})
		return nil, domain.SessionToken{}, auth.ErrAccountSuspended
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, Email: email, UserID: user.ID})
		return nil, domain.SessionToken{}, auth.ErrInvalidCredentials
	}

	token, err := s.tokenMgr.Issue(user.ID, user.Role)
	if err != nil {
		return nil, domain.SessionToken{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventLoginSucceeded,
		Email:   email,
		UserID:  user.ID,
		Payload: events.LoginSucceededPayload{Role: user.Role, ExpiresAt: token.ExpiresAt},
	})
	return withoutHash(user), token, nil
}

// GetUser loads an identity by id without its password hash.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("user")
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}
	return withoutHash(user), nil
}

// SeedAdmin ensures an active administrator exists for email. An existing
// identity with that email is left untouched. It reports whether an account
// was created.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, auth.ErrMissingFields
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		s.logger.Info("admin account exists, skipping seed", zap.String("email", email))
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
	}
	if err := s.store.Users().Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("creating admin account: %w", err)
	}

	s.logger.Warn("admin account created", zap.String("email", email), zap.String("user_id", admin.ID))
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		return auth.ErrEmailAlreadyRegistered
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("building dummy password hash", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func withoutHash(user *domain.User) *domain.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
