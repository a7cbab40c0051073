package storage

import (
	"context"
	"fmt"
	"log"

	"nvprep/internal/model"
)

// Derived bundles the three derived tables of one run.
type Derived struct {
	Catalog []model.StoreProduct
	Budgets []model.BudgetRow
	Costs   []model.DemandCostRow
}

// Materialize bootstraps the derived tables (drop + recreate) and bulk
// inserts the run's rows. Decimal values are passed as strings so that both
// database/sql and pgx backends encode them into NUMERIC columns without a
// driver-specific type mapping.
//
// Returns the total number of rows inserted across the three tables.
func Materialize(ctx context.Context, kind string, repo Repository, prefix string, d Derived) (int64, error) {
	if err := EnsureDerivedTables(ctx, kind, repo, prefix); err != nil {
		return 0, fmt.Errorf("bootstrap derived tables: %w", err)
	}

	var total int64

	rows := make([][]any, 0, len(d.Catalog))
	for _, sp := range d.Catalog {
		rows = append(rows, []any{string(sp.Store), string(sp.Product)})
	}
	n, err := repo.CopyFrom(ctx, prefix+TableStoreProduct,
		[]string{"store_id", "product_id"}, rows)
	total += n
	if err != nil {
		return total, fmt.Errorf("load %s: %w", TableStoreProduct, err)
	}

	rows = rows[:0]
	for _, b := range d.Budgets {
		rows = append(rows, []any{string(b.Store), b.Budget.String()})
	}
	n, err = repo.CopyFrom(ctx, prefix+TablePurchaseBudget,
		[]string{"store_id", "purchase_cost_budget"}, rows)
	total += n
	if err != nil {
		return total, fmt.Errorf("load %s: %w", TablePurchaseBudget, err)
	}

	rows = rows[:0]
	for _, c := range d.Costs {
		rows = append(rows, []any{
			string(c.Store), string(c.Product),
			c.Demand.String(), c.StorageCost.String(),
			c.PurchaseCost.String(), c.MissedSaleCost.String(),
		})
	}
	n, err = repo.CopyFrom(ctx, prefix+TableDemandCosts,
		[]string{"store_id", "product_id", "demand", "storage_cost", "purchase_cost", "missed_sale_cost"}, rows)
	total += n
	if err != nil {
		return total, fmt.Errorf("load %s: %w", TableDemandCosts, err)
	}

	log.Printf("storage: materialized %d derived rows (kind=%s prefix=%q)", total, kind, prefix)
	return total, nil
}
