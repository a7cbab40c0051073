package storage

import (
	"context"
	"fmt"
	"sync"
)

// Derived table base names. Each run drops and recreates all three, so the
// sink always reflects exactly one run (idempotent full recompute).
const (
	TableStoreProduct   = "store_product"
	TablePurchaseBudget = "purchase_budget"
	TableDemandCosts    = "demand_costs"
)

// DDLBootstrapper drops and recreates the derived tables for one backend
// dialect. Backends register their implementation for a given storage kind
// at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, prefix string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given
// storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureDerivedTables locates the DDLBootstrapper for kind and invokes it.
// Callers do not need to know which backend they are using.
func EnsureDerivedTables(ctx context.Context, kind string, repo Repository, prefix string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, prefix)
}
