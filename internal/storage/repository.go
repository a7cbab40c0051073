// Package storage contains the storage-agnostic contract for the optional
// derived-table sink, plus a factory keyed by backend kind.
//
// Backends (sqlite, postgres) register themselves at init time; importing
// nvprep/internal/storage/all (typically from the wiring layer in cmd/)
// makes every built-in backend available. The rest of the application
// depends only on this package.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend implementation ("sqlite", "postgres").
	Kind string

	// DSN is the backend connection string.
	DSN string

	// TablePrefix optionally prefixes derived table names, e.g. a Postgres
	// schema ("analytics.").
	TablePrefix string
}

// Repository is the minimal sink interface the job needs: bulk insert,
// arbitrary DDL, cleanup.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns order) into table and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Exec executes an arbitrary SQL statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	Close()
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a storage kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind, or fails if no backend with that
// kind has been registered.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
