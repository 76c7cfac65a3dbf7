package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byEmail map[string]*User
	byID    map[string]*User
	seq     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return ErrEmailAlreadyUsed
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hash:"+plain {
		return errors.New("mismatch")
	}
	return nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		svc := NewService(newFakeRepo(), plainHasher{})

		u, err := svc.Register(ctx, "  Guest@Example.COM ", "secret-password", " Guest ")
		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", u.Email)
		assert.Equal(t, "hash:secret-password", u.PasswordHash)
		assert.Equal(t, "Guest", u.DisplayName)
		assert.NotEmpty(t, u.ID)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := NewService(newFakeRepo(), plainHasher{})
		_, err := svc.Register(ctx, "guest@example.com", "short", "")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("rejects blank email", func(t *testing.T) {
		svc := NewService(newFakeRepo(), plainHasher{})
		_, err := svc.Register(ctx, "   ", "secret-password", "")
		assert.ErrorIs(t, err, ErrEmailRequired)
	})

	t.Run("rejects duplicate email regardless of case", func(t *testing.T) {
		svc := NewService(newFakeRepo(), plainHasher{})
		_, err := svc.Register(ctx, "guest@example.com", "secret-password", "")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "GUEST@example.com", "secret-password", "")
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) Service {
		svc := NewService(newFakeRepo(), plainHasher{})
		_, err := svc.Register(ctx, "guest@example.com", "secret-password", "Guest")
		require.NoError(t, err)
		return svc
	}

	t.Run("valid credentials update last login", func(t *testing.T) {
		svc := setup(t)
		u, err := svc.Login(ctx, "guest@example.com", "secret-password")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.Login(ctx, "guest@example.com", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical to wrong password", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.Login(ctx, "nobody@example.com", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
