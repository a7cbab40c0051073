// Package plan implements the filter/join/aggregate stage: supplier
// restriction, latest-issuance selection, windowed demand aggregation, and
// the cost join that yields the demand/cost table.
//
// Every function here is a pure transformation from slices to slices or
// maps; outputs are sorted by (store, product) so the whole stage is
// deterministic and re-runs produce identical results. Empty inputs yield
// empty outputs, never errors — an empty join result is a valid outcome of
// this job.
package plan

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"nvprep/internal/model"
)

// Window is the inclusive aggregation window: Days calendar days starting at
// Start. Comparisons are at UTC day granularity, so a 7-day window spans
// exactly offsets 0..6 regardless of time-of-day on the boundary rows.
type Window struct {
	Start time.Time
	Days  int
}

// End returns the last day of the window.
func (w Window) End() time.Time {
	return day(w.Start).AddDate(0, 0, w.Days-1)
}

// Contains reports whether ts falls inside the window, both endpoints
// inclusive.
func (w Window) Contains(ts time.Time) bool {
	d := day(ts)
	return !d.Before(day(w.Start)) && !d.After(w.End())
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Issuance identifies one forecast issuance: the parsed instant plus the raw
// filename token used for deterministic tie-breaking.
type Issuance struct {
	At  time.Time
	Tag string
}

// after reports whether a beats b as the "latest" issuance: strictly later
// instant, or equal instant with lexicographically larger raw token.
func (a Issuance) after(b Issuance) bool {
	if !a.At.Equal(b.At) {
		return a.At.After(b.At)
	}
	return a.Tag > b.Tag
}

// RestrictToSupplier filters the link catalog down to one supplier and
// returns the derived store/product catalog, sorted by (store, product).
//
// The job assumes each (store, product) maps to exactly one supplier; inside
// the target supplier's own catalog a duplicate pair would double joined
// cost rows, so that case fails fast. The same pair appearing under a
// *different* supplier is outside this run's join domain and only logged.
func RestrictToSupplier(links []model.SupplierLink, id model.SupplierID) ([]model.StoreProduct, error) {
	seen := make(map[model.ItemKey]struct{})
	other := make(map[model.ItemKey]model.SupplierID)
	var out []model.StoreProduct

	for _, l := range links {
		key := model.ItemKey{Store: l.Store, Product: l.Product}
		if l.Supplier != id {
			other[key] = l.Supplier
			continue
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate link for store %s product %s under supplier %s", l.Store, l.Product, id)
		}
		seen[key] = struct{}{}
		out = append(out, model.StoreProduct{Store: l.Store, Product: l.Product})
	}

	for key := range seen {
		if sup, ok := other[key]; ok {
			log.Printf("warn: store %s product %s also linked to supplier %s; proceeding with supplier %s",
				key.Store, key.Product, sup, id)
		}
	}

	sortStoreProducts(out)
	return out, nil
}

// LatestIssuancePerItem returns, for each (store, product) key present in
// the forecast log, its single latest issuance: the strictly maximal
// IssuedAt, ties broken by the larger raw IssueTag.
func LatestIssuancePerItem(forecasts []model.Forecast) map[model.ItemKey]Issuance {
	latest := make(map[model.ItemKey]Issuance)
	for _, f := range forecasts {
		iss := Issuance{At: f.IssuedAt, Tag: f.IssueTag}
		cur, ok := latest[f.Key()]
		if !ok || iss.after(cur) {
			latest[f.Key()] = iss
		}
	}
	return latest
}

// DemandInWindow sums PredictedDemand per (store, product) over rows whose
// horizon Timestamp falls inside the window and whose issuance equals that
// item's latest. Items with no in-window rows from their latest issuance are
// absent from the result.
func DemandInWindow(forecasts []model.Forecast, latest map[model.ItemKey]Issuance, w Window) map[model.ItemKey]decimal.Decimal {
	totals := make(map[model.ItemKey]decimal.Decimal)
	for _, f := range forecasts {
		iss, ok := latest[f.Key()]
		if !ok || !iss.At.Equal(f.IssuedAt) || iss.Tag != f.IssueTag {
			continue
		}
		if !w.Contains(f.Timestamp) {
			continue
		}
		totals[f.Key()] = totals[f.Key()].Add(f.PredictedDemand)
	}
	return totals
}

// JoinCosts inner-joins aggregated demand totals with storage parameters and
// the supplier's link rows, producing the demand/cost table sorted by
// (store, product). Pairs missing a storage or cost row are silently
// dropped; that matches the source join semantics and is not an error.
func JoinCosts(
	totals map[model.ItemKey]decimal.Decimal,
	params []model.StorageParam,
	links []model.SupplierLink,
	supplier model.SupplierID,
) []model.DemandCostRow {
	storageBy := make(map[model.ItemKey]model.StorageParam, len(params))
	for _, p := range params {
		storageBy[model.ItemKey{Store: p.Store, Product: p.Product}] = p
	}
	costBy := make(map[model.ItemKey]model.SupplierLink)
	for _, l := range links {
		if l.Supplier != supplier {
			continue
		}
		costBy[model.ItemKey{Store: l.Store, Product: l.Product}] = l
	}

	out := make([]model.DemandCostRow, 0, len(totals))
	for key, demand := range totals {
		sp, ok := storageBy[key]
		if !ok {
			continue
		}
		link, ok := costBy[key]
		if !ok {
			continue
		}
		out = append(out, model.DemandCostRow{
			Store:          key.Store,
			Product:        key.Product,
			Demand:         demand,
			StorageCost:    sp.StorageCost,
			PurchaseCost:   link.PurchaseCost,
			MissedSaleCost: sp.MissedSaleCost,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Store != out[j].Store {
			return out[i].Store < out[j].Store
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// BudgetPerStore derives one purchase budget row per store in the supplier's
// catalog. Link rows for a store normally agree on the budget; on
// disagreement the maximum wins (deterministic, and the conservative
// direction for a ceiling) and a warning is logged.
func BudgetPerStore(links []model.SupplierLink, supplier model.SupplierID) []model.BudgetRow {
	budgets := make(map[model.StoreID]decimal.Decimal)
	conflict := make(map[model.StoreID]bool)
	for _, l := range links {
		if l.Supplier != supplier {
			continue
		}
		cur, ok := budgets[l.Store]
		if !ok {
			budgets[l.Store] = l.PurchaseCostBudget
			continue
		}
		if !cur.Equal(l.PurchaseCostBudget) {
			conflict[l.Store] = true
			if l.PurchaseCostBudget.GreaterThan(cur) {
				budgets[l.Store] = l.PurchaseCostBudget
			}
		}
	}
	for store := range conflict {
		log.Printf("warn: store %s has conflicting purchase budgets under supplier %s; using max %s",
			store, supplier, budgets[store])
	}

	out := make([]model.BudgetRow, 0, len(budgets))
	for store, b := range budgets {
		out = append(out, model.BudgetRow{Store: store, Budget: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Store < out[j].Store })
	return out
}

// StoreUniverse returns the sorted distinct stores of the *entire* link
// table, independent of supplier. This is the iteration universe of the
// report stage: stores with no product under the target supplier still get
// (empty) exports.
func StoreUniverse(links []model.SupplierLink) []model.StoreID {
	set := make(map[model.StoreID]struct{})
	for _, l := range links {
		set[l.Store] = struct{}{}
	}
	out := make([]model.StoreID, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortStoreProducts(sps []model.StoreProduct) {
	sort.Slice(sps, func(i, j int) bool {
		if sps[i].Store != sps[j].Store {
			return sps[i].Store < sps[j].Store
		}
		return sps[i].Product < sps[j].Product
	})
}
