// Package report turns the derived tables into per-store exports.
//
// The stage is two-phase on purpose: Build produces an explicit export plan
// (the successor of the source system's generated second-pass script), and
// Execute materializes it as a plain per-store file-write loop in the same
// process. The plan is also written out as a manifest — one line per export
// with its relative path, row count, and content checksum — which replaces
// the generated script as the run's audit artifact.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"

	"nvprep/internal/model"
)

// Export ordinals and tags; the filename convention is
// <ordinal>_<tag>_store_<StoreID>.csv.
const (
	TagProducts    = "products"
	TagBudget      = "budget"
	TagDemandCosts = "demand_costs"
)

// Export is one planned per-store file. Rows excludes the header.
type Export struct {
	Ordinal int
	Tag     string
	Store   model.StoreID
	Header  []string
	Rows    [][]string
}

// Filename returns the deterministic export filename.
func (e Export) Filename() string {
	return fmt.Sprintf("%02d_%s_store_%s.csv", e.Ordinal, e.Tag, e.Store)
}

// Bytes renders the export's exact file content: header row plus data rows,
// LF line endings. Rendering here (rather than at write time) keeps the
// manifest checksum and the on-disk bytes trivially in agreement.
func (e Export) Bytes() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(e.Header)
	for _, row := range e.Rows {
		_ = w.Write(row)
	}
	w.Flush()
	return buf.Bytes()
}

// Checksum is the xxh3 hash of the export's file bytes.
func (e Export) Checksum() uint64 { return xxh3.Hash(e.Bytes()) }

// Build assembles the export plan: three exports per store in the universe,
// in store order. Stores outside the target supplier's catalog yield
// header-only exports rather than missing files, so the export set is
// always complete over the universe.
func Build(
	universe []model.StoreID,
	catalog []model.StoreProduct,
	budgets []model.BudgetRow,
	costs []model.DemandCostRow,
) []Export {
	productsBy := make(map[model.StoreID][]model.ProductID)
	for _, sp := range catalog {
		productsBy[sp.Store] = append(productsBy[sp.Store], sp.Product)
	}
	budgetBy := make(map[model.StoreID]model.BudgetRow, len(budgets))
	for _, b := range budgets {
		budgetBy[b.Store] = b
	}
	costsBy := make(map[model.StoreID][]model.DemandCostRow)
	for _, c := range costs {
		costsBy[c.Store] = append(costsBy[c.Store], c)
	}

	var out []Export
	for _, store := range universe {
		products := Export{
			Ordinal: 1, Tag: TagProducts, Store: store,
			Header: []string{"product_id"},
		}
		for _, p := range productsBy[store] {
			products.Rows = append(products.Rows, []string{string(p)})
		}

		budget := Export{
			Ordinal: 2, Tag: TagBudget, Store: store,
			Header: []string{"purchase_cost_budget"},
		}
		if b, ok := budgetBy[store]; ok {
			budget.Rows = append(budget.Rows, []string{b.Budget.String()})
		}

		demand := Export{
			Ordinal: 3, Tag: TagDemandCosts, Store: store,
			Header: []string{"product_id", "demand", "storage_cost", "purchase_cost", "missed_sale_cost"},
		}
		for _, c := range costsBy[store] {
			demand.Rows = append(demand.Rows, []string{
				string(c.Product),
				c.Demand.String(),
				c.StorageCost.String(),
				c.PurchaseCost.String(),
				c.MissedSaleCost.String(),
			})
		}

		out = append(out, products, budget, demand)
	}
	return out
}

// WriteManifest emits the plan as text, one export statement per line.
func WriteManifest(w io.Writer, plan []Export) error {
	for _, e := range plan {
		if _, err := fmt.Fprintf(w, "WRITE %s ROWS %d XXH3 %016x\n", e.Filename(), len(e.Rows), e.Checksum()); err != nil {
			return err
		}
	}
	return nil
}
