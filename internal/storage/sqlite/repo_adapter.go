// This adapter wires the SQLite backend into the storage-agnostic factory
// and registers its derived-table DDL bootstrapper.
package sqlite

import (
	"context"
	"fmt"

	"nvprep/internal/storage"
)

// DDL returns the drop/create statements for the derived tables. SQLite has
// flexible typing; NUMERIC keeps the intent readable and sorts correctly.
func DDL(prefix string) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s%s", prefix, storage.TableStoreProduct),
		fmt.Sprintf(`CREATE TABLE %s%s (
  store_id   TEXT NOT NULL,
  product_id TEXT NOT NULL,
  PRIMARY KEY (store_id, product_id)
)`, prefix, storage.TableStoreProduct),

		fmt.Sprintf("DROP TABLE IF EXISTS %s%s", prefix, storage.TablePurchaseBudget),
		fmt.Sprintf(`CREATE TABLE %s%s (
  store_id             TEXT NOT NULL PRIMARY KEY,
  purchase_cost_budget NUMERIC NOT NULL
)`, prefix, storage.TablePurchaseBudget),

		fmt.Sprintf("DROP TABLE IF EXISTS %s%s", prefix, storage.TableDemandCosts),
		fmt.Sprintf(`CREATE TABLE %s%s (
  store_id         TEXT NOT NULL,
  product_id       TEXT NOT NULL,
  demand           NUMERIC NOT NULL,
  storage_cost     NUMERIC NOT NULL,
  purchase_cost    NUMERIC NOT NULL,
  missed_sale_cost NUMERIC NOT NULL,
  PRIMARY KEY (store_id, product_id)
)`, prefix, storage.TableDemandCosts),
	}
}

// init registers the "sqlite" backend with the factory and its DDL
// bootstrapper.
func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})

	storage.RegisterDDL("sqlite", func(ctx context.Context, repo storage.Repository, prefix string) error {
		for _, stmt := range DDL(prefix) {
			if err := repo.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
