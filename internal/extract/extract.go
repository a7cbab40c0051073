// Package extract reads the four delimited source datasets into typed
// in-memory tables.
//
// Schemas are positional and fixed per dataset; the header row is skipped
// but never validated. Any row whose field count or field types disagree
// with the schema aborts the read with a *SchemaError — the job is
// all-or-nothing, so there is no row-level skip-and-continue here.
//
// Demand forecast files are discovered by glob; the issuance timestamp is
// encoded in each filename and parsed into Forecast.IssuedAt, with the raw
// token kept on Forecast.IssueTag.
package extract

import (
	"nvprep/internal/model"
)

// Column counts of the fixed positional schemas.
const (
	supplierFields = 7  // id, name, shipping_cost, min_vol, max_vol, fixed_order_size, purchase_cost_budget
	linkFields     = 13 // store, supplier, product, lead_time, min_order_qty, max_order_qty, multiplier, purchase_cost, backorder_cost, shipping_cost, purchase_cost_budget, ordering_frequency, service_level
	storageFields  = 7  // store, storage_id, product, storage_cost, missed_sale_cost, min_inventory, max_inventory
	forecastFields = 7  // store, product, timestamp, predicted_demand, distribution, variance, probability
)

// Suppliers reads the suppliers catalog.
func Suppliers(path string, opt Options) ([]model.Supplier, error) {
	rows, err := readTable(path, opt, supplierFields)
	if err != nil {
		return nil, err
	}
	out := make([]model.Supplier, 0, len(rows))
	for _, r := range rows {
		s := model.Supplier{
			ID:   model.SupplierID(r.str(0)),
			Name: r.str(1),
		}
		if s.ShippingCost, err = r.decimal(2, "shipping_cost"); err != nil {
			return nil, err
		}
		if s.MinVol, err = r.int64(3, "min_vol"); err != nil {
			return nil, err
		}
		if s.MaxVol, err = r.int64(4, "max_vol"); err != nil {
			return nil, err
		}
		if s.FixedOrderSize, err = r.int64(5, "fixed_order_size"); err != nil {
			return nil, err
		}
		if s.PurchaseCostBudget, err = r.decimal(6, "purchase_cost_budget"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Links reads the product-supplier link catalog.
func Links(path string, opt Options) ([]model.SupplierLink, error) {
	rows, err := readTable(path, opt, linkFields)
	if err != nil {
		return nil, err
	}
	out := make([]model.SupplierLink, 0, len(rows))
	for _, r := range rows {
		l := model.SupplierLink{
			Store:    model.StoreID(r.str(0)),
			Supplier: model.SupplierID(r.str(1)),
			Product:  model.ProductID(r.str(2)),
		}
		if l.LeadTimeDays, err = r.int64(3, "lead_time"); err != nil {
			return nil, err
		}
		if l.MinOrderQty, err = r.int64(4, "min_order_qty"); err != nil {
			return nil, err
		}
		if l.MaxOrderQty, err = r.int64(5, "max_order_qty"); err != nil {
			return nil, err
		}
		if l.Multiplier, err = r.int64(6, "multiplier"); err != nil {
			return nil, err
		}
		if l.PurchaseCost, err = r.decimal(7, "purchase_cost"); err != nil {
			return nil, err
		}
		if l.BackorderCost, err = r.decimal(8, "backorder_cost"); err != nil {
			return nil, err
		}
		if l.ShippingCost, err = r.decimal(9, "shipping_cost"); err != nil {
			return nil, err
		}
		if l.PurchaseCostBudget, err = r.decimal(10, "purchase_cost_budget"); err != nil {
			return nil, err
		}
		if l.OrderingFrequency, err = r.int64(11, "ordering_frequency"); err != nil {
			return nil, err
		}
		if l.ServiceLevel, err = r.decimal(12, "service_level"); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// StorageParams reads the product storage/cost catalog.
func StorageParams(path string, opt Options) ([]model.StorageParam, error) {
	rows, err := readTable(path, opt, storageFields)
	if err != nil {
		return nil, err
	}
	out := make([]model.StorageParam, 0, len(rows))
	for _, r := range rows {
		p := model.StorageParam{
			Store:     model.StoreID(r.str(0)),
			StorageID: r.str(1),
			Product:   model.ProductID(r.str(2)),
		}
		if p.StorageCost, err = r.decimal(3, "storage_cost"); err != nil {
			return nil, err
		}
		if p.MissedSaleCost, err = r.decimal(4, "missed_sale_cost"); err != nil {
			return nil, err
		}
		if p.MinInventorySize, err = r.int64(5, "min_inventory_size"); err != nil {
			return nil, err
		}
		if p.MaxInventorySize, err = r.int64(6, "max_inventory_size"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Forecasts reads every demand forecast file matching pattern. Each file's
// issuance timestamp comes from its filename (layout; empty means
// DefaultIssuanceLayout). Rows from all files are concatenated in sorted
// filename order so the result is stable across runs.
func Forecasts(pattern, layout string, opt Options) ([]model.Forecast, error) {
	if layout == "" {
		layout = DefaultIssuanceLayout
	}
	files, err := Discover(pattern)
	if err != nil {
		return nil, err
	}

	var out []model.Forecast
	for _, path := range files {
		issued, tag, err := parseIssuance(path, layout)
		if err != nil {
			return nil, err
		}
		rows, err := readTable(path, opt, forecastFields)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			f := model.Forecast{
				Store:    model.StoreID(r.str(0)),
				Product:  model.ProductID(r.str(1)),
				IssuedAt: issued,
				IssueTag: tag,
			}
			if f.Timestamp, err = r.time(2, "timestamp", opt.timestampLayout()); err != nil {
				return nil, err
			}
			if f.PredictedDemand, err = r.decimal(3, "predicted_demand"); err != nil {
				return nil, err
			}
			f.Distribution = r.str(4)
			if f.Variance, err = r.decimal(5, "variance"); err != nil {
				return nil, err
			}
			if f.Probability, err = r.decimal(6, "probability"); err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}
