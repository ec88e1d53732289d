package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/mingle-social/apiserver/internal/auth"
	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

const (
	minPasswordLen    = 8
	maxPasswordLen    = 50
	minPasswordUppers = 3
	minPasswordDigits = 1
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Surname  string
	Age      int
}

// AuthService orchestrates registration, login and token refresh over
// the user repository, the password hasher and the token service.
type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates an account and returns it together with a fresh token
// pair. The plaintext password is hashed and discarded; only the digest
// is stored.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (types.User, auth.TokenPair, error) {
	email := NormalizeEmail(input.Email)

	if err := validatePassword(input.Password); err != nil {
		return types.User{}, auth.TokenPair{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, auth.TokenPair{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, auth.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return types.User{}, auth.TokenPair{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Surname:      strings.TrimSpace(input.Surname),
		Age:          input.Age,
		PasswordHash: hash,
	})
	if err != nil {
		// The unique constraint closes the races the lookup above
		// cannot see.
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, auth.TokenPair{}, ErrDuplicateEmail
		}
		return types.User{}, auth.TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user.ID, time.Now())
	if err != nil {
		return types.User{}, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair. An unknown
// email and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, auth.TokenPair{}, ErrInvalidCredentials
		}
		return types.User{}, auth.TokenPair{}, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return types.User{}, auth.TokenPair{}, ErrInvalidCredentials
		}
		return types.User{}, auth.TokenPair{}, err
	}
	if !ok {
		return types.User{}, auth.TokenPair{}, ErrInvalidCredentials
	}

	if !user.Active {
		return types.User{}, auth.TokenPair{}, ErrAccountDisabled
	}

	pair, err := s.tokens.Issue(user.ID, time.Now())
	if err != nil {
		return types.User{}, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The account
// must still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	userID, err := s.tokens.ValidateRefresh(refreshToken, time.Now())
	if err != nil {
		return auth.TokenPair{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.TokenPair{}, auth.ErrTokenInvalid
		}
		return auth.TokenPair{}, err
	}
	if !user.Active {
		return auth.TokenPair{}, ErrAccountDisabled
	}

	return s.tokens.Issue(user.ID, time.Now())
}

// NormalizeEmail lower-cases and trims an email address so that lookups
// and the unique constraint agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword enforces the minimum-strength policy: 8-50 characters
// with at least three upper-case letters and one digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrWeakPassword
	}
	uppers, digits := 0, 0
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			uppers++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if uppers < minPasswordUppers || digits < minPasswordDigits {
		return ErrWeakPassword
	}
	return nil
}
