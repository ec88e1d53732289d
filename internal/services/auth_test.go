package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mingle-social/apiserver/internal/auth"
	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

// fakeUserRepo is an in-memory UserRepository safe for concurrent use.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, len(users), nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.Active = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Active = active
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	tokens, err := auth.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return NewAuthService(repo, auth.NewPasswordHasher(bcrypt.MinCost), tokens), repo
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "GOODpass1",
		Name:     "Alice",
		Surname:  "Smith",
		Age:      30,
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, pair, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, "GOODpass1", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	// Same address in a different case collides.
	input := validRegisterInput()
	input.Username = "alice2"
	input.Email = "ALICE@example.COM"
	_, _, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterPasswordPolicy(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "ABc1"},
		{"too long", "ABC1" + string(make([]byte, 60))},
		{"no digits", "ABCdefghij"},
		{"not enough uppercase", "Abcdefgh1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRegisterInput()
			input.Password = tc.password
			_, _, err := svc.Register(context.Background(), input)
			assert.ErrorIs(t, err, ErrWeakPassword)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, pair, err := svc.Login(context.Background(), "alice@example.com", "GOODpass1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.Access)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(context.Background(), "alice@example.com", "WRONGpass1")
	_, _, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "GOODpass1")
	_, _, emptyPassword := svc.Login(context.Background(), "alice@example.com", "")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.ErrorIs(t, emptyPassword, ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(context.Background(), user.ID, false))

	_, _, err = svc.Login(context.Background(), "alice@example.com", "GOODpass1")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, pair, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)
	assert.NotEmpty(t, fresh.Refresh)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, pair, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestRefreshDeletedAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, pair, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
