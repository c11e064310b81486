package factory

import (
	"time"

	"github.com/Makuqty/GridLock/internal/dependencies/mocks"
	"github.com/Makuqty/GridLock/internal/services/auth"
	"github.com/Makuqty/GridLock/internal/storage/memory"
	"github.com/Makuqty/GridLock/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.Config{
		TokenSecret:   []byte("test-secret"),
		TokenDuration: time.Hour,
	}
	app := newWithDependencies(store, mockClock, mockRandom, authCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
