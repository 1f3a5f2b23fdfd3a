package backend

import (
	"context"

	"cashledger/internal/amqp"
	"cashledger/internal/services"
	"cashledger/internal/storage"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is the configured store plus the optional change-event client.
type BackendResult struct {
	Store   storage.EntryStore
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the event client as a service publisher, or nil when
// messaging is not configured.
func (r *BackendResult) Publisher() services.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: optional pasted-sheet file used as initial content.
	SeedFile string

	// AMQP is optional for every backend.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
