package locator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codequest-game/codequest/internal/dependencies/clock"
	"github.com/codequest-game/codequest/internal/dependencies/random"
	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/services/game"
	"github.com/codequest-game/codequest/internal/services/ledger"
	"github.com/codequest-game/codequest/internal/services/round"
	"github.com/codequest-game/codequest/internal/services/scoring"
	"github.com/codequest-game/codequest/internal/storage"
)

// Locator publishes exactly one GameService instance per process
// lifetime. It is an explicit handle meant to be injected into
// presentation code, not reached through package-level state.
//
// The first successful Get health-checks the persistence backend,
// wires the service graph once, and publishes it. If the probe fails
// nothing is cached: every later call retries the full sequence until
// the backend comes back.
type Locator struct {
	store  storage.Storage
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	// Fast path reads the published instance without taking the lock;
	// the mutex serializes construction and the second check.
	instance atomic.Pointer[game.Service]
	mu       sync.Mutex
}

// New creates a Locator over the given backend and dependencies.
// No construction or probing happens until the first Get.
func New(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Locator {
	return &Locator{
		store:  store,
		clock:  clk,
		random: rnd,
		logger: logger,
	}
}

// Get returns the shared GameService, constructing it on first use.
// Concurrent first calls construct exactly one instance; every caller
// observes the same one once published.
func (l *Locator) Get(ctx context.Context) (*game.Service, error) {
	if svc := l.instance.Load(); svc != nil {
		return svc, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the lock: another caller may have published while
	// we were waiting.
	if svc := l.instance.Load(); svc != nil {
		return svc, nil
	}

	if err := l.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	svc := l.build()
	l.instance.Store(svc)
	l.logger.Info("game service initialized")
	return svc, nil
}

// build wires the service graph behind the facade
func (l *Locator) build() *game.Service {
	scoringService := scoring.New()
	ledgerService := ledger.New(l.store, l.logger)
	roundManager := round.NewManager(l.store, scoringService, ledgerService, l.clock, l.logger)
	return game.New(l.store, roundManager, ledgerService, l.random, l.logger)
}
