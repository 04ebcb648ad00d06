package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
)

const tokenIssuer = "wasatah"

var (
	// ErrInvalidCredentials is returned when no user matches the email and password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for missing, malformed or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthOptions configures demo login.
type AuthOptions struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements the demo login.
type AuthService struct {
	clock
	users  *repository.Users
	ledger LedgerRecorder
	opts   AuthOptions
	logger *slog.Logger
}

// NewAuthService constructs an AuthService. Without a secret a random one is
// generated, so tokens do not survive a restart.
func NewAuthService(users *repository.Users, ledger LedgerRecorder, opts AuthOptions, logger *slog.Logger) *AuthService {
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		if _, err := rand.Read(opts.Secret); err != nil {
			panic(fmt.Sprintf("generate jwt secret: %v", err))
		}
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		clock:  defaultClock(),
		users:  users,
		ledger: ledger,
		opts:   opts,
		logger: logger.With("component", "auth"),
	}
}

// Login checks the password against every user registered with the email and
// issues a token for the first match.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	verr := &domain.ValidationError{}
	if in.Email == "" {
		verr.Add("email", "email is required")
	}
	if in.Password == "" {
		verr.Add("password", "password is required")
	}
	if err := verr.OrNil(); err != nil {
		return LoginResult{}, err
	}

	candidates, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(in.Email))
	if err != nil {
		return LoginResult{}, err
	}
	var user *domain.User
	for i := range candidates {
		if candidates[i].PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].PasswordHash), []byte(in.Password)) == nil {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		s.logger.Info("login rejected", "email", identity.HashValue(identity.NormalizeEmail(in.Email)))
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user.ID, *user); err != nil {
		return LoginResult{}, err
	}

	expiresAt := now.Add(s.opts.TokenTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(s.opts.Secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	record(ctx, s.ledger, s.logger, domain.EventUserLogin, user.ID, user.Name, map[string]any{
		"role": string(user.Role),
	})
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.nowFn),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s.users.Get(ctx, claims.Subject)
}
