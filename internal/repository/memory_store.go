package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// memoryState holds the records of a MemoryStore. A single mutex serialises
// every operation; a transaction holds it for its whole duration.
type memoryState struct {
	mu     sync.Mutex
	users  map[string]domain.User
	emails map[string]string
	codes  map[string]domain.VerificationCode
}

// MemoryStore is an in-process Store used when no database is configured
// and in tests. Transactions are serialised and rolled back by snapshot.
type MemoryStore struct {
	state *memoryState
	inTx  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		users:  make(map[string]domain.User),
		emails: make(map[string]string),
		codes:  make(map[string]domain.VerificationCode),
	}}
}

func (s *MemoryStore) Users() UserRepository {
	return &memoryUsers{store: s}
}

func (s *MemoryStore) Codes() VerificationCodeRepository {
	return &memoryCodes{store: s}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	users, emails, codes := maps.Clone(st.users), maps.Clone(st.emails), maps.Clone(st.codes)
	restore := func() {
		st.users, st.emails, st.codes = users, emails, codes
	}

	committed := false
	defer func() {
		if !committed {
			restore()
		}
	}()

	if err := fn(&MemoryStore{state: st, inTx: true}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

// locked runs fn with the state lock held, unless already inside a transaction.
func (s *MemoryStore) locked(fn func(st *memoryState) error) error {
	if !s.inTx {
		s.state.mu.Lock()
		defer s.state.mu.Unlock()
	}
	return fn(s.state)
}

type memoryUsers struct {
	store *MemoryStore
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	return r.store.locked(func(st *memoryState) error {
		if _, exists := st.emails[user.Email]; exists {
			return ErrDuplicateEmail
		}
		now := time.Now().UTC()
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = *user
		st.emails[user.Email] = user.ID
		return nil
	})
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.store.locked(func(st *memoryState) error {
		user, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.store.locked(func(st *memoryState) error {
		id, ok := st.emails[email]
		if !ok {
			return ErrNotFound
		}
		user := st.users[id]
		out = &user
		return nil
	})
	return out, err
}

type memoryCodes struct {
	store *MemoryStore
}

func (r *memoryCodes) Upsert(_ context.Context, code *domain.VerificationCode) error {
	return r.store.locked(func(st *memoryState) error {
		code.Attempts = 0
		code.CreatedAt = time.Now().UTC()
		st.codes[code.Email] = *code
		return nil
	})
}

func (r *memoryCodes) GetForUpdate(_ context.Context, email string) (*domain.VerificationCode, error) {
	var out *domain.VerificationCode
	err := r.store.locked(func(st *memoryState) error {
		code, ok := st.codes[email]
		if !ok {
			return ErrNotFound
		}
		out = &code
		return nil
	})
	return out, err
}

func (r *memoryCodes) IncrementAttempts(_ context.Context, email string) (int, error) {
	var attempts int
	err := r.store.locked(func(st *memoryState) error {
		code, ok := st.codes[email]
		if !ok {
			return ErrNotFound
		}
		code.Attempts++
		st.codes[email] = code
		attempts = code.Attempts
		return nil
	})
	return attempts, err
}

func (r *memoryCodes) Delete(_ context.Context, email string) error {
	return r.store.locked(func(st *memoryState) error {
		if _, ok := st.codes[email]; !ok {
			return ErrNotFound
		}
		delete(st.codes, email)
		return nil
	})
}
