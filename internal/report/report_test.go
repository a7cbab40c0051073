package report

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"nvprep/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExportFilename(t *testing.T) {
	t.Parallel()

	e := Export{Ordinal: 3, Tag: TagDemandCosts, Store: "ST42"}
	if got, want := e.Filename(), "03_demand_costs_store_ST42.csv"; got != want {
		t.Fatalf("Filename() = %q, want %q", got, want)
	}
}

func TestExportBytes(t *testing.T) {
	t.Parallel()

	e := Export{
		Header: []string{"product_id", "demand"},
		Rows:   [][]string{{"P1", "12.5"}, {"P2", "0"}},
	}
	want := "product_id,demand\nP1,12.5\nP2,0\n"
	if got := string(e.Bytes()); got != want {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
}

func TestBuild_ThreeExportsPerStoreInOrder(t *testing.T) {
	t.Parallel()

	universe := []model.StoreID{"S1", "S2"}
	catalog := []model.StoreProduct{
		{Store: "S1", Product: "P1"},
		{Store: "S1", Product: "P2"},
	}
	budgets := []model.BudgetRow{{Store: "S1", Budget: dec("1000")}}
	costs := []model.DemandCostRow{
		{Store: "S1", Product: "P1", Demand: dec("20"), StorageCost: dec("0.1"), PurchaseCost: dec("4.2"), MissedSaleCost: dec("2.5")},
	}

	plan := Build(universe, catalog, budgets, costs)
	if len(plan) != 6 {
		t.Fatalf("got %d exports, want 6", len(plan))
	}

	var names []string
	for _, e := range plan {
		names = append(names, e.Filename())
	}
	wantNames := []string{
		"01_products_store_S1.csv",
		"02_budget_store_S1.csv",
		"03_demand_costs_store_S1.csv",
		"01_products_store_S2.csv",
		"02_budget_store_S2.csv",
		"03_demand_costs_store_S2.csv",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("filenames = %v, want %v", names, wantNames)
	}

	if got := string(plan[2].Bytes()); got != "product_id,demand,storage_cost,purchase_cost,missed_sale_cost\nP1,20,0.1,4.2,2.5\n" {
		t.Fatalf("demand export = %q", got)
	}
}

// A store that only other suppliers serve still gets all three exports, with
// headers but no rows.
func TestBuild_HeaderOnlyForStoreOutsideCatalog(t *testing.T) {
	t.Parallel()

	universe := []model.StoreID{"S1", "S3"}
	catalog := []model.StoreProduct{{Store: "S1", Product: "P1"}}
	budgets := []model.BudgetRow{{Store: "S1", Budget: dec("1000")}}

	plan := Build(universe, catalog, budgets, nil)

	for _, e := range plan[3:] { // the S3 exports
		if e.Store != "S3" {
			t.Fatalf("export store = %s, want S3", e.Store)
		}
		if len(e.Rows) != 0 {
			t.Fatalf("%s: got %d rows, want 0", e.Filename(), len(e.Rows))
		}
		content := string(e.Bytes())
		if strings.Count(content, "\n") != 1 {
			t.Fatalf("%s: not header-only: %q", e.Filename(), content)
		}
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	t.Parallel()

	if plan := Build(nil, nil, nil, nil); len(plan) != 0 {
		t.Fatalf("got %d exports, want 0", len(plan))
	}
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()

	plan := Build(
		[]model.StoreID{"S1"},
		[]model.StoreProduct{{Store: "S1", Product: "P1"}},
		[]model.BudgetRow{{Store: "S1", Budget: dec("50")}},
		nil,
	)

	var buf bytes.Buffer
	if err := WriteManifest(&buf, plan); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d manifest lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "WRITE 01_products_store_S1.csv ROWS 1 XXH3 ") {
		t.Fatalf("manifest line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "WRITE 02_budget_store_S1.csv ROWS 1 XXH3 ") {
		t.Fatalf("manifest line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "WRITE 03_demand_costs_store_S1.csv ROWS 0 XXH3 ") {
		t.Fatalf("manifest line 2 = %q", lines[2])
	}
}

func TestExecute_WritesFilesAndManifest(t *testing.T) {
	t.Parallel()

	plan := Build(
		[]model.StoreID{"S1"},
		[]model.StoreProduct{{Store: "S1", Product: "P1"}},
		[]model.BudgetRow{{Store: "S1", Budget: dec("50")}},
		nil,
	)
	root := filepath.Join(t.TempDir(), "out")

	if err := Execute(plan, root, "export_plan.txt"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, e := range plan {
		got, err := os.ReadFile(filepath.Join(root, e.Filename()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Filename(), err)
		}
		if !bytes.Equal(got, e.Bytes()) {
			t.Fatalf("%s: on-disk bytes differ from plan", e.Filename())
		}
	}
	if _, err := os.Stat(filepath.Join(root, "export_plan.txt")); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestExecute_ManifestDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := Execute(nil, root, ""); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d files, want 0", len(entries))
	}
}

func TestExecute_RerunIsByteIdentical(t *testing.T) {
	t.Parallel()

	plan := Build(
		[]model.StoreID{"S1"},
		[]model.StoreProduct{{Store: "S1", Product: "P1"}},
		[]model.BudgetRow{{Store: "S1", Budget: dec("50")}},
		[]model.DemandCostRow{{Store: "S1", Product: "P1", Demand: dec("7"), StorageCost: dec("0.1"), PurchaseCost: dec("2"), MissedSaleCost: dec("3")}},
	)
	root := t.TempDir()

	read := func() map[string][]byte {
		t.Helper()
		out := map[string][]byte{}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		for _, e := range entries {
			b, err := os.ReadFile(filepath.Join(root, e.Name()))
			if err != nil {
				t.Fatalf("read %s: %v", e.Name(), err)
			}
			out[e.Name()] = b
		}
		return out
	}

	if err := Execute(plan, root, "export_plan.txt"); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	first := read()
	if err := Execute(plan, root, "export_plan.txt"); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	second := read()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-run outputs differ")
	}
}
