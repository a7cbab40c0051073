// This adapter wires the Postgres backend into the storage-agnostic factory
// and registers its derived-table DDL bootstrapper.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"nvprep/internal/storage"
)

// DDL returns the drop/create statements for the derived tables.
func DDL(prefix string) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgFQN(prefix+storage.TableStoreProduct)),
		fmt.Sprintf(`CREATE TABLE %s (
  store_id   TEXT NOT NULL,
  product_id TEXT NOT NULL,
  PRIMARY KEY (store_id, product_id)
)`, pgFQN(prefix+storage.TableStoreProduct)),

		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgFQN(prefix+storage.TablePurchaseBudget)),
		fmt.Sprintf(`CREATE TABLE %s (
  store_id             TEXT NOT NULL PRIMARY KEY,
  purchase_cost_budget NUMERIC NOT NULL
)`, pgFQN(prefix+storage.TablePurchaseBudget)),

		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgFQN(prefix+storage.TableDemandCosts)),
		fmt.Sprintf(`CREATE TABLE %s (
  store_id         TEXT NOT NULL,
  product_id       TEXT NOT NULL,
  demand           NUMERIC NOT NULL,
  storage_cost     NUMERIC NOT NULL,
  purchase_cost    NUMERIC NOT NULL,
  missed_sale_cost NUMERIC NOT NULL,
  PRIMARY KEY (store_id, product_id)
)`, pgFQN(prefix+storage.TableDemandCosts)),
	}
}

// init registers the "postgres" backend with the factory and its DDL
// bootstrapper.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})

	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository, prefix string) error {
		for _, stmt := range DDL(prefix) {
			if err := repo.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "analytics.demand_costs"
// to "analytics"."demand_costs". If no dot is present, returns a single
// quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
