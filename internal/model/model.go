// Package model defines the typed entities flowing through the preparation
// job: the four extracted source datasets and the derived rows handed to the
// report and storage stages.
//
// Monetary amounts and demand quantities use shopspring/decimal so that
// aggregation and CSV rendering are exact and stable across runs; identifiers
// are typed strings to keep store/product/supplier keys from being mixed up
// at call sites.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreID identifies a store.
type StoreID string

// ProductID identifies a product.
type ProductID string

// SupplierID identifies a supplier.
type SupplierID string

// ItemKey is the (store, product) grain used by joins and aggregations.
type ItemKey struct {
	Store   StoreID
	Product ProductID
}

// Supplier is one row of the suppliers catalog.
type Supplier struct {
	ID                 SupplierID
	Name               string
	ShippingCost       decimal.Decimal
	MinVol             int64
	MaxVol             int64
	FixedOrderSize     int64
	PurchaseCostBudget decimal.Decimal
}

// SupplierLink is one row of the product-supplier link catalog. The job
// assumes each (store, product) maps to exactly one supplier; see
// plan.RestrictToSupplier for how violations are handled.
type SupplierLink struct {
	Store              StoreID
	Supplier           SupplierID
	Product            ProductID
	LeadTimeDays       int64
	MinOrderQty        int64
	MaxOrderQty        int64
	Multiplier         int64
	PurchaseCost       decimal.Decimal
	BackorderCost      decimal.Decimal
	ShippingCost       decimal.Decimal
	PurchaseCostBudget decimal.Decimal
	OrderingFrequency  int64
	ServiceLevel       decimal.Decimal
}

// StorageParam is one row of the product storage/cost catalog; one row per
// (store, product).
type StorageParam struct {
	Store            StoreID
	StorageID        string
	Product          ProductID
	StorageCost      decimal.Decimal
	MissedSaleCost   decimal.Decimal
	MinInventorySize int64
	MaxInventorySize int64
}

// Forecast is one row of the demand forecast log. Timestamp is the horizon
// point the prediction refers to; IssuedAt is the issuance time parsed from
// the source filename. IssueTag keeps the raw filename timestamp token so
// issuance ties can be broken on the raw string.
type Forecast struct {
	Store           StoreID
	Product         ProductID
	Timestamp       time.Time
	PredictedDemand decimal.Decimal
	Distribution    string
	Variance        decimal.Decimal
	Probability     decimal.Decimal
	IssuedAt        time.Time
	IssueTag        string
}

// Key returns the forecast's (store, product) key.
func (f Forecast) Key() ItemKey { return ItemKey{Store: f.Store, Product: f.Product} }

// StoreProduct is one row of the derived catalog restricted to the target
// supplier.
type StoreProduct struct {
	Store   StoreID
	Product ProductID
}

// BudgetRow is the derived per-store purchase budget; one row per store
// supplied by the target supplier.
type BudgetRow struct {
	Store  StoreID
	Budget decimal.Decimal
}

// DemandCostRow is the derived demand/cost table at (store, product) grain;
// the input to the downstream optimization step.
type DemandCostRow struct {
	Store          StoreID
	Product        ProductID
	Demand         decimal.Decimal
	StorageCost    decimal.Decimal
	PurchaseCost   decimal.Decimal
	MissedSaleCost decimal.Decimal
}
