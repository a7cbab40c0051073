// This file adds a lightweight linter/validator for Job values. It performs
// static checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is a dotted path into the config (e.g. "inputs.forecasts"); Message
// is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Job. It does not mutate the job;
// callers decide whether warnings are fatal.
func Validate(j Job) []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	if strings.TrimSpace(j.Name) == "" {
		errf("job", "job must not be empty; it is used for metrics labeling and identifying runs")
	}
	if strings.TrimSpace(j.SupplierID) == "" {
		errf("supplier_id", "target supplier id must not be empty")
	}
	if j.PeriodDays <= 0 {
		errf("period_days", "period length must be positive, got %d", j.PeriodDays)
	}
	if strings.TrimSpace(j.WindowStart) == "" {
		errf("window_start", "window start date is required")
	} else if _, err := time.ParseInLocation("2006-01-02", j.WindowStart, time.UTC); err != nil {
		errf("window_start", "not a date (2006-01-02): %q", j.WindowStart)
	}

	if strings.TrimSpace(j.Inputs.Root) == "" {
		errf("inputs.root", "input root must not be empty")
	}
	for path, v := range map[string]string{
		"inputs.suppliers": j.Inputs.Suppliers,
		"inputs.links":     j.Inputs.Links,
		"inputs.storage":   j.Inputs.Storage,
		"inputs.forecasts": j.Inputs.Forecasts,
	} {
		if strings.TrimSpace(v) == "" {
			errf(path, "dataset path must not be empty")
		}
	}
	if d := j.Inputs.Delimiter; len([]rune(d)) > 1 {
		errf("inputs.delimiter", "delimiter must be a single character, got %q", d)
	}
	switch j.Inputs.Encoding {
	case "", "utf8", "utf-8", "windows-1250", "cp1250", "windows-1252", "cp1252", "iso-8859-1", "latin-1":
	default:
		errf("inputs.encoding", "unsupported encoding %q", j.Inputs.Encoding)
	}

	if strings.TrimSpace(j.Output.Root) == "" {
		errf("output.root", "output root must not be empty")
	}

	switch j.Storage.Kind {
	case "", "none":
		// Sink disabled; DSN is irrelevant.
	case "sqlite", "postgres":
		if strings.TrimSpace(j.Storage.DB.DSN) == "" {
			errf("storage.db.dsn", "storage kind %q requires a DSN", j.Storage.Kind)
		}
	default:
		// Unknown kinds are warnings for forward compatibility: a matching
		// backend may have been registered by the wiring layer.
		warnf("storage.kind", "unknown storage kind %q; ensure a matching backend is registered", j.Storage.Kind)
	}

	return issues
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
