package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bookshelf-auth/internal/auth"
	"github.com/spec-kit/bookshelf-auth/internal/config"
	"github.com/spec-kit/bookshelf-auth/internal/domain"
	"github.com/spec-kit/bookshelf-auth/internal/events"
	"github.com/spec-kit/bookshelf-auth/internal/mail"
	"github.com/spec-kit/bookshelf-auth/internal/repository"
)

// Codes are drawn uniformly from [codeMin, codeMin+codeSpan).
const (
	codeMin  = 100000
	codeSpan = 900000
)

// VerificationService issues and consumes email verification codes.
type VerificationService struct {
	store       repository.Store
	cooldowns   repository.CooldownRepository
	mailer      mail.Mailer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	ttl         time.Duration
	maxAttempts int
	cooldown    time.Duration
	now         func() time.Time
	random      io.Reader
}

// VerificationDependencies encapsulates collaborators of the verification service.
// Cooldowns and Dispatcher are optional.
type VerificationDependencies struct {
	Store      repository.Store
	Cooldowns  repository.CooldownRepository
	Mailer     mail.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewVerificationService builds the service.
func NewVerificationService(cfg config.AuthConfig, deps VerificationDependencies) *VerificationService {
	ttl := cfg.VerificationCodeTTL()
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		store:       deps.Store,
		cooldowns:   deps.Cooldowns,
		mailer:      deps.Mailer,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		ttl:         ttl,
		maxAttempts: cfg.VerificationMaxAttempts,
		cooldown:    cfg.ResendCooldown(),
		now:         time.Now,
		random:      rand.Reader,
	}
}

// Issue generates a fresh code for an unregistered email, replaces any
// outstanding code and mails it. When delivery fails the record is kept and
// ErrDeliveryFailed is returned.
func (s *VerificationService) Issue(ctx context.Context, email string) (*domain.VerificationCode, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, auth.ErrMissingFields
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, auth.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}

	if !s.acquireCooldown(ctx, email) {
		return nil, auth.ErrCodeRecentlySent
	}

	value, err := s.generateCode()
	if err != nil {
		s.releaseCooldown(ctx, email)
		return nil, fmt.Errorf("generating verification code: %w", err)
	}

	record := &domain.VerificationCode{
		Email:     email,
		Code:      value,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Codes().Upsert(ctx, record); err != nil {
		s.releaseCooldown(ctx, email)
		return nil, fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}

	deliveryErr := s.deliver(ctx, record)
	s.publish(ctx, events.Event{
		Type:    events.EventVerificationCodeIssued,
		Email:   email,
		Payload: events.CodeIssuedPayload{ExpiresAt: record.ExpiresAt, Delivered: deliveryErr == nil},
	})
	if deliveryErr != nil {
		s.releaseCooldown(ctx, email)
		s.logger.Error("verification email delivery failed", zap.String("email", email), zap.Error(deliveryErr))
		return record, fmt.Errorf("%w: %w", auth.ErrDeliveryFailed, deliveryErr)
	}
	return record, nil
}

// ValidateAndConsume checks the submitted code and deletes it on success.
// The lookup, comparison and delete run in one transaction, so a code is
// consumed at most once.
func (s *VerificationService) ValidateAndConsume(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return auth.ErrMissingFields
	}

	var failure error
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		err := s.consume(ctx, tx, email, code)
		if committedFailure(err) {
			failure = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return failure
}

// consume validates and deletes the code inside tx. Mismatch and expiry
// still modify the record (attempt counter, deletion); callers must commit
// for those outcomes, see committedFailure.
func (s *VerificationService) consume(ctx context.Context, tx repository.Store, email, submitted string) error {
	codes := tx.Codes()

	record, err := codes.GetForUpdate(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.ErrNoCodeRequested
	}
	if err != nil {
		return fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		attempts, err := codes.IncrementAttempts(ctx, email)
		if err != nil {
			return fmt.Errorf("%w: %w", auth.ErrStorage, err)
		}
		if s.maxAttempts > 0 && attempts >= s.maxAttempts {
			if err := codes.Delete(ctx, email); err != nil {
				return fmt.Errorf("%w: %w", auth.ErrStorage, err)
			}
			s.logger.Warn("verification code discarded after too many attempts", zap.String("email", email))
		}
		return auth.ErrCodeMismatch
	}

	if record.Expired(s.now()) {
		if err := codes.Delete(ctx, email); err != nil {
			return fmt.Errorf("%w: %w", auth.ErrStorage, err)
		}
		return auth.ErrCodeExpired
	}

	if err := codes.Delete(ctx, email); err != nil {
		return fmt.Errorf("%w: %w", auth.ErrStorage, err)
	}
	return nil
}

// committedFailure reports whether a failed consume left changes that must
// be committed rather than rolled back.
func committedFailure(err error) bool {
	return errors.Is(err, auth.ErrCodeMismatch) || errors.Is(err, auth.ErrCodeExpired)
}

func (s *VerificationService) generateCode() (string, error) {
	n, err := rand.Int(s.random, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

func (s *VerificationService) deliver(ctx context.Context, record *domain.VerificationCode) error {
	body, err := mail.RenderVerificationEmail(record.Code, s.ttl)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	return s.mailer.Send(ctx, record.Email, mail.VerificationSubject, body)
}

// acquireCooldown fails open when the cooldown store is unavailable.
func (s *VerificationService) acquireCooldown(ctx context.Context, email string) bool {
	if s.cooldowns == nil || s.cooldown <= 0 {
		return true
	}
	ok, err := s.cooldowns.Acquire(ctx, email, s.cooldown)
	if err != nil {
		s.logger.Warn("code cooldown unavailable", zap.String("email", email), zap.Error(err))
		return true
	}
	return ok
}

func (s *VerificationService) releaseCooldown(ctx context.Context, email string) {
	if s.cooldowns == nil || s.cooldown <= 0 {
		return
	}
	if err := s.cooldowns.Release(ctx, email); err != nil {
		s.logger.Warn("releasing code cooldown", zap.String("email", email), zap.Error(err))
	}
}

func (s *VerificationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
