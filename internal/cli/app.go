package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/codequest-game/codequest/internal/config"
	"github.com/codequest-game/codequest/internal/factory"
	redisstorage "github.com/codequest-game/codequest/internal/storage/redis"
)

// loadConfig reads the configured YAML file. A missing file at the
// default path is not an error; the defaults apply.
func loadConfig() (config.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newLogger builds the application logger from the logging config.
// The --verbose flag forces debug level regardless of config.
func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newApp wires the application from the loaded config. The returned
// closer releases the storage connection if the backend holds one.
func newApp() (*factory.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		PostgresDSN: cfg.Postgres.DSN,
	}
	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if cfg.Redis.URL != "" {
			redisCfg.URL = cfg.Redis.URL
		}
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		if c, ok := app.Storage.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return app, closer, nil
}
