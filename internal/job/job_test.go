package job

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"nvprep/internal/config"
	"nvprep/internal/storage"
)

// writeInputs lays out a small but complete input tree: one supplier, three
// links (two under supplier 2, one under supplier 9), storage params for the
// supplier-2 items, and two forecast issuances where the second supersedes
// the first.
func writeInputs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"suppliers.csv": "id,name,shipping_cost,min_vol,max_vol,fixed_order_size,purchase_cost_budget\n" +
			"2,Acme,1.50,5,100,10,1000\n",
		"supplier_products.csv": "store,supplier,product,lead_time,min_order_qty,max_order_qty,multiplier,purchase_cost,backorder_cost,shipping_cost,purchase_cost_budget,ordering_frequency,service_level\n" +
			"S1,2,P1,3,1,10,1,4.2,0.5,1,1000,7,0.95\n" +
			"S1,2,P2,3,1,10,1,6,0.5,1,1000,7,0.95\n" +
			"S2,9,P9,3,1,10,1,2,0.5,1,500,7,0.95\n",
		"product_storage.csv": "store,storage_id,product,storage_cost,missed_sale_cost,min_inventory,max_inventory\n" +
			"S1,W1,P1,0.1,2.5,0,500\n" +
			"S1,W1,P2,0.2,3,0,500\n",
		"forecasts/demand_20240101T000000.csv": "store,product,timestamp,predicted_demand,distribution,variance,probability\n" +
			"S1,P1,2024-01-02,10,normal,4,0.5\n",
		"forecasts/demand_20240102T000000.csv": "store,product,timestamp,predicted_demand,distribution,variance,probability\n" +
			"S1,P1,2024-01-02,20,normal,4,0.5\n" +
			"S1,P1,2024-01-03,5,normal,4,0.5\n" +
			"S1,P2,2024-01-04,7,normal,4,0.5\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func testJob(inputRoot, outputRoot string) config.Job {
	return config.Job{
		Name:        "job_test",
		SupplierID:  "2",
		PeriodDays:  7,
		WindowStart: "2024-01-01",
		Inputs: config.Inputs{
			Root:      inputRoot,
			Suppliers: "suppliers.csv",
			Links:     "supplier_products.csv",
			Storage:   "product_storage.csv",
			Forecasts: "forecasts/demand_*.csv",
		},
		Output:  config.Output{Root: outputRoot},
		Storage: config.Storage{Kind: "none"},
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(root, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		out[e.Name()] = string(b)
	}
	return out
}

func TestRun(t *testing.T) {
	inputRoot := writeInputs(t)
	outputRoot := filepath.Join(t.TempDir(), "out")
	cfg := testJob(inputRoot, outputRoot)

	summary, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Suppliers != 1 || summary.Links != 3 || summary.StorageParams != 2 || summary.ForecastRows != 4 {
		t.Fatalf("extraction counts = %+v", summary)
	}
	if summary.Stores != 2 || summary.CatalogItems != 2 || summary.DemandRows != 2 {
		t.Fatalf("derived counts = %+v", summary)
	}
	if summary.ExportsWritten != 6 {
		t.Fatalf("exports = %d, want 6", summary.ExportsWritten)
	}
	if summary.SinkRows != 0 {
		t.Fatalf("sink rows = %d, want 0 with sink disabled", summary.SinkRows)
	}

	got := readTree(t, outputRoot)
	if len(got) != 7 { // 6 exports + manifest
		t.Fatalf("got %d output files, want 7: %v", len(got), got)
	}

	// The superseded first issuance must not leak into the totals: (S1,P1)
	// aggregates 20+5 from the latest file, not the earlier 10.
	wantDemand := "product_id,demand,storage_cost,purchase_cost,missed_sale_cost\n" +
		"P1,25,0.1,4.2,2.5\n" +
		"P2,7,0.2,6,3\n"
	if got["03_demand_costs_store_S1.csv"] != wantDemand {
		t.Fatalf("demand export = %q, want %q", got["03_demand_costs_store_S1.csv"], wantDemand)
	}

	wantProducts := "product_id\nP1\nP2\n"
	if got["01_products_store_S1.csv"] != wantProducts {
		t.Fatalf("products export = %q, want %q", got["01_products_store_S1.csv"], wantProducts)
	}
	if got["02_budget_store_S1.csv"] != "purchase_cost_budget\n1000\n" {
		t.Fatalf("budget export = %q", got["02_budget_store_S1.csv"])
	}

	// S2 is served by supplier 9 only: header-only exports.
	if got["01_products_store_S2.csv"] != "product_id\n" {
		t.Fatalf("S2 products export = %q", got["01_products_store_S2.csv"])
	}
	if got["03_demand_costs_store_S2.csv"] != "product_id,demand,storage_cost,purchase_cost,missed_sale_cost\n" {
		t.Fatalf("S2 demand export = %q", got["03_demand_costs_store_S2.csv"])
	}

	if _, ok := got["export_plan.txt"]; !ok {
		t.Fatalf("manifest missing from %v", got)
	}
}

func TestRun_RerunIsByteIdentical(t *testing.T) {
	inputRoot := writeInputs(t)
	outputRoot := filepath.Join(t.TempDir(), "out")
	cfg := testJob(inputRoot, outputRoot)

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := readTree(t, outputRoot)

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second := readTree(t, outputRoot)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-run outputs differ")
	}
}

func TestRun_MissingInputFails(t *testing.T) {
	inputRoot := writeInputs(t)
	if err := os.Remove(filepath.Join(inputRoot, "suppliers.csv")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cfg := testJob(inputRoot, t.TempDir())

	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("expected extraction error")
	}
}

func TestRun_BadWindowStartFails(t *testing.T) {
	cfg := testJob(writeInputs(t), t.TempDir())
	cfg.WindowStart = "next monday"

	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("expected window_start error")
	}
}

// sinkRepo is a storage.Repository stand-in wired through the factory seam.
type sinkRepo struct {
	rows   int64
	closed bool
}

func (s *sinkRepo) CopyFrom(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	s.rows += int64(len(rows))
	return int64(len(rows)), nil
}

func (s *sinkRepo) Exec(context.Context, string) error { return nil }
func (s *sinkRepo) Close()                             { s.closed = true }

func TestRun_MaterializesWhenSinkEnabled(t *testing.T) {
	const kind = "job-test-sink"
	storage.RegisterDDL(kind, func(context.Context, storage.Repository, string) error { return nil })

	repo := &sinkRepo{}
	orig := newRepositoryFn
	newRepositoryFn = func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		if cfg.Kind != kind {
			t.Fatalf("factory got kind %q", cfg.Kind)
		}
		return repo, nil
	}
	t.Cleanup(func() { newRepositoryFn = orig })

	cfg := testJob(writeInputs(t), t.TempDir())
	cfg.Storage = config.Storage{Kind: kind, DB: config.DBConfig{DSN: "fake"}}

	summary, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 2 catalog rows + 1 budget row + 2 demand/cost rows.
	if summary.SinkRows != 5 {
		t.Fatalf("sink rows = %d, want 5", summary.SinkRows)
	}
	if repo.rows != 5 {
		t.Fatalf("repo rows = %d, want 5", repo.rows)
	}
	if !repo.closed {
		t.Fatalf("repository not closed")
	}
}
