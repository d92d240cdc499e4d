package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/versusleague/internal/dependencies/mocks"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	cfg := DefaultConfig()
	cfg.Secret = []byte("test-secret")
	cfg.BcryptCost = bcrypt.MinCost
	svc, err := New(s.storage, s.clock, mocks.NewMockIDGenerator(), cfg)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestNewRequiresSecret() {
	_, err := New(s.storage, s.clock, mocks.NewMockIDGenerator(), DefaultConfig())
	s.Error(err)
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	session, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.AccountID("alice"), session.Account)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestRegisterPersistsHashedCredential() {
	_, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	cred, err := s.storage.GetCredential(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(cred.PasswordHash)
	s.NotEqual("password123", cred.PasswordHash)
	s.Equal(s.clock.Now(), cred.CreatedAt)
}

func (s *ServiceSuite) TestRegisterFailsIfAccountExists() {
	_, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "different1")
	s.ErrorIs(err, model.ErrAccountExists)
}

func (s *ServiceSuite) TestRegisterRejectsBadAccountIDs() {
	for _, id := range []model.AccountID{"", "contract:1,0", "has space", "a/b", model.AccountID(make([]byte, 65))} {
		_, err := s.service.Register(s.ctx, id, "password123")
		s.ErrorIs(err, ErrInvalidAccountID, "account %q", id)
	}
}

func (s *ServiceSuite) TestRegisterRejectsShortPassword() {
	_, err := s.service.Register(s.ctx, "alice", "short")
	s.ErrorIs(err, ErrWeakPassword)

	_, err = s.storage.GetCredential(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(model.AccountID("alice"), session.Account)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownAccount() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// ValidateToken tests

func (s *ServiceSuite) TestValidateTokenSucceeds() {
	session, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	validated, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(model.AccountID("alice"), validated.Account)
	s.Equal(session.IssuedAt, validated.IssuedAt)
	s.Equal(session.ExpiresAt, validated.ExpiresAt)
	s.Equal(time.UTC, validated.ExpiresAt.Location())
}

func (s *ServiceSuite) TestValidateTokenFailsWithGarbage() {
	_, err := s.service.ValidateToken("invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateTokenFailsWhenExpired() {
	session, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)

	_, err = s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateTokenFailsWithOtherSecret() {
	claims := jwt.RegisteredClaims{
		Issuer:    "versusleague",
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateTokenRejectsUnsignedTokens() {
	claims := jwt.RegisteredClaims{
		Issuer:    "versusleague",
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateTokenRequiresExpiry() {
	claims := jwt.RegisteredClaims{Issuer: "versusleague", Subject: "alice"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidSession)
}
