package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashledger/internal/amqp"
	applog "cashledger/internal/log"
	"cashledger/internal/storage"
	"cashledger/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With(applog.FieldComponent, applog.ComponentBackend)}
}

// CreateBackend opens the configured store and, when AMQP is configured, the
// event client. A broker that cannot be reached only disables events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   storage.EntryStore
		closers []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		version, _, err := storage.SchemaVersion(config.SQLiteDBPath)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to read schema version", "error", err)
		}
		entries, err := repo.Count(ctx)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to count stored entries", "error", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend",
			"db_path", config.SQLiteDBPath,
			"schema_version", version,
			"entries", entries)
	case MemoryBackend:
		mem, err := f.createMemoryStore(config)
		if err != nil {
			return nil, err
		}
		store = mem
		f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: store}
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Events = client
			closers = append(closers, client.Close)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (*memory.Store, error) {
	if config.SeedFile == "" {
		return memory.New(), nil
	}
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	return store, nil
}
