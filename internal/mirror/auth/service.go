// Package auth issues and verifies mirror identities. Accounts are either
// email/password (bcrypt) or anonymous; both receive an HS256 JWT whose
// subject is the user id.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/riff/internal/apperrors"
	"github.com/alexanderramin/riff/internal/mirror/docstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// Claims are the token claims. Anonymous marks an ephemeral identity.
type Claims struct {
	jwt.RegisteredClaims
	Anonymous bool `json:"anon,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID    string
	Anonymous bool
}

type Result struct {
	Token string        `json:"token"`
	User  docstore.User `json:"user"`
}

type Service struct {
	users     *docstore.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	cost      int
}

type Option func(*Service)

// WithClock overrides the token clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost lowers hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(users *docstore.UserRepository, jwtSecret string, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, email, password string) (*Result, *apperrors.APIError) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" {
		return nil, apperrors.BadRequest("invalid_email", "email is required")
	}
	if len(password) < minPasswordLen {
		return nil, apperrors.BadRequest("invalid_password", "password must be at least 6 characters")
	}

	_, err := s.users.GetByEmail(ctx, normalizedEmail)
	if err == nil {
		return nil, apperrors.Conflict("email_exists", "email already registered", nil)
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, apperrors.Internal("failed to query user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password")
	}

	now := s.now().UTC()
	user := docstore.User{
		ID:           uuid.NewString(),
		Email:        normalizedEmail,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.Conflict("email_exists", "email already registered", nil)
		}
		return nil, apperrors.Internal("failed to create user")
	}
	return s.result(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Result, *apperrors.APIError) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" || password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, normalizedEmail)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return s.result(*user)
}

// SignInAnonymously creates a fresh anonymous account.
func (s *Service) SignInAnonymously(ctx context.Context) (*Result, *apperrors.APIError) {
	now := s.now().UTC()
	user := docstore.User{
		ID:        uuid.NewString(),
		Anonymous: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, apperrors.Internal("failed to create user")
	}
	return s.result(user)
}

func (s *Service) ParseToken(tokenString string) (Principal, *apperrors.APIError) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Principal{}, apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return Principal{}, apperrors.Unauthorized("invalid token subject")
	}
	return Principal{UserID: claims.Subject, Anonymous: claims.Anonymous}, nil
}

func (s *Service) result(user docstore.User) (*Result, *apperrors.APIError) {
	token, apiErr := s.issueToken(user)
	if apiErr != nil {
		return nil, apiErr
	}
	user.PasswordHash = ""
	return &Result{Token: token, User: user}, nil
}

func (s *Service) issueToken(user docstore.User) (string, *apperrors.APIError) {
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Anonymous: user.Anonymous,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token")
	}
	return signed, nil
}
