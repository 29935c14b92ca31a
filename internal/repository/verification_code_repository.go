package repository

import (
	"context"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// VerificationCodeRepository is a single-slot store keyed by email.
type VerificationCodeRepository interface {
	// Upsert replaces any existing code for the email.
	Upsert(ctx context.Context, code *domain.VerificationCode) error
	// GetForUpdate loads the code and, inside a transaction, locks it until
	// the transaction ends.
	GetForUpdate(ctx context.Context, email string) (*domain.VerificationCode, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

type verificationCodeRepository struct {
	db DBTX
}

func (r *verificationCodeRepository) Upsert(ctx context.Context, code *domain.VerificationCode) error {
	const query = `
        INSERT INTO verification_codes (email, code, attempts, expires_at)
        VALUES ($1, $2, 0, $3)
        ON CONFLICT (email) DO UPDATE
        SET code=EXCLUDED.code, attempts=0, expires_at=EXCLUDED.expires_at, created_at=NOW()
        RETURNING attempts, created_at`

	return mapPgError(r.db.QueryRow(ctx, query,
		code.Email,
		code.Code,
		code.ExpiresAt,
	).Scan(&code.Attempts, &code.CreatedAt))
}

func (r *verificationCodeRepository) GetForUpdate(ctx context.Context, email string) (*domain.VerificationCode, error) {
	const query = `
        SELECT email, code, attempts, expires_at, created_at
        FROM verification_codes WHERE email=$1
        FOR UPDATE`

	var code domain.VerificationCode
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&code.Email,
		&code.Code,
		&code.Attempts,
		&code.ExpiresAt,
		&code.CreatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &code, nil
}

func (r *verificationCodeRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	const query = `
        UPDATE verification_codes SET attempts=attempts+1
        WHERE email=$1
        RETURNING attempts`

	var attempts int
	if err := r.db.QueryRow(ctx, query, email).Scan(&attempts); err != nil {
		return 0, mapPgError(err)
	}
	return attempts, nil
}

func (r *verificationCodeRepository) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM verification_codes WHERE email=$1`

	cmd, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
