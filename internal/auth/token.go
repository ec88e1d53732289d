package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by the API.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens accepted only by the
	// refresh endpoint.
	TokenTypeRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned for a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for any other token defect: bad
	// signature, malformed payload, wrong type, missing subject.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenPair carries a fresh access/refresh token pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type tokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed tokens carrying a user
// identity. The signing secret is fixed for the process lifetime.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService constructs a TokenService. The secret must be non-empty.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Issue returns a new access/refresh pair for the given user, with
// expiries measured from now.
func (s *TokenService) Issue(userID int, now time.Time) (TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ValidateAccess checks an access token and returns its subject user ID.
func (s *TokenService) ValidateAccess(tokenString string, now time.Time) (int, error) {
	return s.validate(tokenString, TokenTypeAccess, now)
}

// ValidateRefresh checks a refresh token and returns its subject user ID.
func (s *TokenService) ValidateRefresh(tokenString string, now time.Time) (int, error) {
	return s.validate(tokenString, TokenTypeRefresh, now)
}

func (s *TokenService) sign(userID int, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// validate verifies the signature before inspecting expiry, so a forged
// token never reports ErrTokenExpired.
func (s *TokenService) validate(tokenString, wantType string, now time.Time) (int, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}
	if claims.Type != wantType {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
