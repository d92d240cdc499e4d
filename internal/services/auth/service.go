package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/versusleague/internal/dependencies/clock"
	"github.com/mcoot/versusleague/internal/dependencies/idgen"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrWeakPassword       = errors.New("password is too short")
)

const (
	maxAccountIDLength = 64
	minPasswordLength  = 8
)

// Session is an issued bearer token
type Session struct {
	Token     string
	Account   model.AccountID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service registers accounts and issues signed bearer tokens for them
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator

	secret          []byte
	issuer          string
	sessionDuration time.Duration
	bcryptCost      int
}

// Config holds configuration for the auth service
type Config struct {
	Secret          []byte
	Issuer          string
	SessionDuration time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration. The secret must still
// be provided.
func DefaultConfig() Config {
	return Config{
		Issuer:          "versusleague",
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, cfg Config) (*Service, error) {
	def := DefaultConfig()
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("auth: token secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = def.Issuer
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = def.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		ids:             ids,
		secret:          cfg.Secret,
		issuer:          cfg.Issuer,
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
	}, nil
}

// ValidateAccountID checks that an id can be used as an account address
func ValidateAccountID(account model.AccountID) error {
	s := string(account)
	if s == "" || len(s) > maxAccountIDLength {
		return ErrInvalidAccountID
	}
	if strings.ContainsAny(s, ":,/") {
		return ErrInvalidAccountID
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return ErrInvalidAccountID
		}
	}
	return nil
}

// Register stores a credential for a new account and signs it in
func (s *Service) Register(ctx context.Context, account model.AccountID, password string) (*Session, error) {
	if err := ValidateAccountID(account); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	cred := &model.Credential{
		Account:      account,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, err
	}

	return s.issue(account)
}

// Login checks a password and issues a new token
func (s *Service) Login(ctx context.Context, account model.AccountID, password string) (*Session, error) {
	cred, err := s.storage.GetCredential(ctx, account)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(account)
}

// ValidateToken verifies a bearer token and returns its session
func (s *Service) ValidateToken(token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if ValidateAccountID(model.AccountID(claims.Subject)) != nil {
		return nil, ErrInvalidSession
	}

	session := &Session{
		Token:   token,
		Account: model.AccountID(claims.Subject),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return session, nil
}

func (s *Service) issue(account model.AccountID) (*Session, error) {
	now := s.clock.Now()
	expires := now.Add(s.sessionDuration)

	claims := jwt.RegisteredClaims{
		ID:        s.ids.NewID(),
		Issuer:    s.issuer,
		Subject:   string(account),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Token:     token,
		Account:   account,
		IssuedAt:  now.Truncate(time.Second).UTC(),
		ExpiresAt: expires.Truncate(time.Second).UTC(),
	}, nil
}
