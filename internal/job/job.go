// Package job wires the full preparation run: parallel extraction of the
// four source datasets, the filter/join/aggregate stage, optional
// materialization of the derived tables into a SQL sink, and the per-store
// report exports.
//
// The run is all-or-nothing: any extraction or join error aborts it with no
// partial output. Empty join results are not errors — the report stage
// tolerates empty sets and still writes header-only exports for every store
// in the universe. Retries belong to the invoking scheduler, not here.
package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"nvprep/internal/config"
	"nvprep/internal/extract"
	"nvprep/internal/metrics"
	"nvprep/internal/model"
	"nvprep/internal/plan"
	"nvprep/internal/report"
	"nvprep/internal/storage"
)

// Summary reports what one run did.
type Summary struct {
	Suppliers     int
	Links         int
	StorageParams int
	ForecastRows  int

	Stores         int // store universe size
	CatalogItems   int // (store, product) pairs under the target supplier
	DemandRows     int // derived demand/cost rows
	ExportsWritten int
	SinkRows       int64 // rows materialized into the SQL sink, 0 when disabled

	Elapsed time.Duration
}

// newRepositoryFn is a test seam; production points at the storage factory.
var newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	return storage.New(ctx, cfg)
}

// Run executes the job described by cfg. The caller is expected to have
// validated cfg (config.Validate) beforehand; Run still fails cleanly on a
// malformed window date.
func Run(ctx context.Context, cfg config.Job) (*Summary, error) {
	start := time.Now()

	windowStart, err := cfg.ParseWindowStart()
	if err != nil {
		return nil, fmt.Errorf("window_start: %w", err)
	}
	window := plan.Window{Start: windowStart, Days: cfg.PeriodDays}

	opt := extract.Options{
		Comma:           delimiterRune(cfg.Inputs.Delimiter),
		Encoding:        cfg.Inputs.Encoding,
		TimestampLayout: cfg.Inputs.TimestampLayout,
	}

	// Extraction: the four datasets are independent bulk reads, so they run
	// concurrently; the first failure cancels the rest.
	var (
		suppliers []model.Supplier
		links     []model.SupplierLink
		params    []model.StorageParam
		forecasts []model.Forecast
	)
	stepStart := time.Now()
	var g errgroup.Group
	g.Go(func() error {
		var err error
		suppliers, err = extract.Suppliers(cfg.Inputs.SuppliersPath(), opt)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = extract.Links(cfg.Inputs.LinksPath(), opt)
		return err
	})
	g.Go(func() error {
		var err error
		params, err = extract.StorageParams(cfg.Inputs.StoragePath(), opt)
		return err
	})
	g.Go(func() error {
		var err error
		forecasts, err = extract.Forecasts(cfg.Inputs.ForecastsPattern(), cfg.Inputs.IssuanceLayout, opt)
		return err
	})
	err = g.Wait()
	metrics.RecordStep(cfg.Name, "extract", err, time.Since(stepStart))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	metrics.RecordRows(cfg.Name, "suppliers", int64(len(suppliers)))
	metrics.RecordRows(cfg.Name, "links", int64(len(links)))
	metrics.RecordRows(cfg.Name, "storage_params", int64(len(params)))
	metrics.RecordRows(cfg.Name, "forecasts", int64(len(forecasts)))
	log.Printf("extract: suppliers=%d links=%d storage_params=%d forecast_rows=%d",
		len(suppliers), len(links), len(params), len(forecasts))

	// Filter/join/aggregate.
	stepStart = time.Now()
	supplier := model.SupplierID(cfg.SupplierID)
	catalog, err := plan.RestrictToSupplier(links, supplier)
	metrics.RecordStep(cfg.Name, "plan", err, time.Since(stepStart))
	if err != nil {
		return nil, fmt.Errorf("restrict to supplier: %w", err)
	}
	latest := plan.LatestIssuancePerItem(forecasts)
	totals := plan.DemandInWindow(forecasts, latest, window)
	costs := plan.JoinCosts(totals, params, links, supplier)
	budgets := plan.BudgetPerStore(links, supplier)
	universe := plan.StoreUniverse(links)

	metrics.RecordRows(cfg.Name, "demand_costs", int64(len(costs)))
	log.Printf("plan: supplier=%s stores=%d catalog_items=%d demand_rows=%d window=%s..%s",
		supplier, len(universe), len(catalog), len(costs),
		window.Start.Format("2006-01-02"), window.End().Format("2006-01-02"))

	// Optional SQL sink for the derived tables.
	var sinkRows int64
	if cfg.Storage.Enabled() {
		stepStart = time.Now()
		sinkRows, err = materialize(ctx, cfg, storage.Derived{
			Catalog: catalog,
			Budgets: budgets,
			Costs:   costs,
		})
		metrics.RecordStep(cfg.Name, "materialize", err, time.Since(stepStart))
		if err != nil {
			return nil, fmt.Errorf("materialize: %w", err)
		}
	}

	// Per-store exports plus the run manifest.
	stepStart = time.Now()
	exports := report.Build(universe, catalog, budgets, costs)
	err = report.Execute(exports, cfg.Output.Root, cfg.Output.ManifestName())
	metrics.RecordStep(cfg.Name, "report", err, time.Since(stepStart))
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	metrics.RecordExports(cfg.Name, int64(len(exports)))
	log.Printf("report: wrote %d exports to %s", len(exports), cfg.Output.Root)

	return &Summary{
		Suppliers:      len(suppliers),
		Links:          len(links),
		StorageParams:  len(params),
		ForecastRows:   len(forecasts),
		Stores:         len(universe),
		CatalogItems:   len(catalog),
		DemandRows:     len(costs),
		ExportsWritten: len(exports),
		SinkRows:       sinkRows,
		Elapsed:        time.Since(start),
	}, nil
}

func materialize(ctx context.Context, cfg config.Job, d storage.Derived) (int64, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:        cfg.Storage.Kind,
		DSN:         cfg.Storage.DB.DSN,
		TablePrefix: cfg.Storage.DB.TablePrefix,
	})
	if err != nil {
		return 0, err
	}
	defer repo.Close()
	return storage.Materialize(ctx, cfg.Storage.Kind, repo, cfg.Storage.DB.TablePrefix, d)
}

func delimiterRune(s string) rune {
	if s == "" {
		return 0
	}
	return []rune(s)[0]
}
