package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/codequest-game/codequest/internal/dependencies/clock"
	"github.com/codequest-game/codequest/internal/dependencies/random"
	"github.com/codequest-game/codequest/internal/locator"
	"github.com/codequest-game/codequest/internal/services/game"
	"github.com/codequest-game/codequest/internal/services/ledger"
	"github.com/codequest-game/codequest/internal/services/round"
	"github.com/codequest-game/codequest/internal/services/scoring"
	"github.com/codequest-game/codequest/internal/storage"
	"github.com/codequest-game/codequest/internal/storage/memory"
	postgresstorage "github.com/codequest-game/codequest/internal/storage/postgres"
	redisstorage "github.com/codequest-game/codequest/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ScoringService *scoring.Service
	LedgerService  *ledger.Service
	RoundManager   *round.Manager
	GameService    *game.Service

	// Locator gates shared access for presentation code
	Locator *locator.Locator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or
	// "postgres"). If empty, defaults to "memory".
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN holds the Postgres connection string (required if
	// StorageType is "postgres")
	PostgresDSN string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// NewStorage creates the storage backend selected by the config
func NewStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		return postgresstorage.New(cfg.PostgresDSN)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	scoringService := scoring.New()
	ledgerService := ledger.New(store, logger)
	roundManager := round.NewManager(store, scoringService, ledgerService, clk, logger)
	gameService := game.New(store, roundManager, ledgerService, rnd, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		ScoringService: scoringService,
		LedgerService:  ledgerService,
		RoundManager:   roundManager,
		GameService:    gameService,
		Locator:        locator.New(store, clk, rnd, logger),
	}
}
