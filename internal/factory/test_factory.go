package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/versusleague/internal/dependencies/mocks"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
	"github.com/mcoot/versusleague/internal/storage/memory"
	"github.com/mcoot/versusleague/internal/testutil"
)

// TestAdmin administers the registry of a TestApp
const TestAdmin model.AccountID = "admin"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
}

// NewTestApp creates an App on in-memory storage with mocked dependencies.
// The registry starts on the given module (counters when empty).
func NewTestApp(registryModule string) (*TestApp, error) {
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte("test-secret")
	authCfg.BcryptCost = bcrypt.MinCost

	app, err := newWithDependencies(context.Background(), memory.New(), mockClock, mockIDs, Config{
		AuthConfig:     authCfg,
		AdminAccount:   TestAdmin,
		RegistryModule: registryModule,
	}, testutil.NopLogger())
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}, nil
}
