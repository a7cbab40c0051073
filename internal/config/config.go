// Package config defines the JSON-serializable job configuration for the
// preparation run. It is intentionally small, explicit, and dependency-free
// so that job files can be loaded from disk and passed through the program
// without additional glue code: decoding is performed by the standard
// library, and all values are fixed at job start (nothing here is dynamic).
//
// Example (trimmed):
//
//	{
//	  "job": "newsvendor_prep",
//	  "supplier_id": "2",
//	  "period_days": 7,
//	  "window_start": "2024-01-01",
//	  "inputs": {
//	    "root": "/mnt/shared/input",
//	    "suppliers": "suppliers.csv",
//	    "links": "supplier_products.csv",
//	    "storage": "product_storage.csv",
//	    "forecasts": "forecasts/demand_*.csv"
//	  },
//	  "output": { "root": "/mnt/shared/output" },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "nvprep.db" } }
//	}
package config

import (
	"path/filepath"
	"time"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Name identifies the run; it is used for metrics labeling and log lines.
	Name string `json:"job"`

	// SupplierID is the target supplier whose catalog the run is restricted to.
	SupplierID string `json:"supplier_id"`

	// PeriodDays is the aggregation window length in calendar days. A 7-day
	// period spans exactly 7 days, both endpoints inclusive.
	PeriodDays int `json:"period_days"`

	// WindowStart is the first day of the window, "2006-01-02", interpreted
	// in UTC.
	WindowStart string `json:"window_start"`

	Inputs  Inputs  `json:"inputs"`
	Output  Output  `json:"output"`
	Storage Storage `json:"storage"`
}

// Inputs locates the four source datasets under a common root on the
// mounted shared filesystem.
type Inputs struct {
	// Root is the input directory prefix; the per-dataset paths below are
	// resolved against it.
	Root string `json:"root"`

	Suppliers string `json:"suppliers"`
	Links     string `json:"links"`
	Storage   string `json:"storage"`

	// Forecasts is a glob; the trailing filename token encodes each file's
	// issuance timestamp.
	Forecasts string `json:"forecasts"`

	// Delimiter is the field separator for all inputs; "," when empty.
	Delimiter string `json:"delimiter"`

	// Encoding names the input text encoding; empty means UTF-8.
	Encoding string `json:"encoding"`

	// IssuanceLayout parses the forecast filename timestamp token; empty
	// means the extractor default.
	IssuanceLayout string `json:"issuance_layout"`

	// TimestampLayout parses the forecast horizon timestamp column; empty
	// means RFC 3339 (a bare date is always accepted as fallback).
	TimestampLayout string `json:"timestamp_layout"`
}

// SuppliersPath resolves the suppliers catalog path against Root.
func (in Inputs) SuppliersPath() string { return filepath.Join(in.Root, in.Suppliers) }

// LinksPath resolves the link catalog path against Root.
func (in Inputs) LinksPath() string { return filepath.Join(in.Root, in.Links) }

// StoragePath resolves the storage catalog path against Root.
func (in Inputs) StoragePath() string { return filepath.Join(in.Root, in.Storage) }

// ForecastsPattern resolves the forecast glob against Root.
func (in Inputs) ForecastsPattern() string { return filepath.Join(in.Root, in.Forecasts) }

// Output locates the export directory and names the run manifest.
type Output struct {
	Root string `json:"root"`

	// Manifest is the manifest filename within Root; "export_plan.txt" when
	// empty, "-" disables the manifest.
	Manifest string `json:"manifest"`
}

// ManifestName resolves the manifest filename, "" when disabled.
func (o Output) ManifestName() string {
	switch o.Manifest {
	case "":
		return "export_plan.txt"
	case "-":
		return ""
	default:
		return o.Manifest
	}
}

// Storage selects the optional SQL sink for the derived tables.
type Storage struct {
	// Kind selects the backend ("sqlite", "postgres") or disables the sink
	// ("", "none").
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// Enabled reports whether a sink is configured.
func (s Storage) Enabled() bool { return s.Kind != "" && s.Kind != "none" }

// DBConfig configures the SQL sink.
type DBConfig struct {
	// DSN is the backend connection string (pgx pool DSN or SQLite path).
	DSN string `json:"dsn"`

	// TablePrefix optionally prefixes the derived table names, e.g. a
	// Postgres schema ("analytics.") or a plain name prefix.
	TablePrefix string `json:"table_prefix"`
}

// ParseWindowStart parses WindowStart; the zero time and an error are
// returned for malformed values. Validation reports this as an issue before
// the job runs, so job code treats an error here as a bug guard only.
func (j Job) ParseWindowStart() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", j.WindowStart, time.UTC)
}
