package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultIssuanceLayout parses the timestamp token embedded in forecast
// filenames, e.g. demand_20240102T063000.csv.
const DefaultIssuanceLayout = "20060102T150405"

// Discover expands a glob pattern into a sorted list of matching files. A
// pattern that matches nothing is an error wrapping ErrNoFiles: forecast
// inputs are mandatory and an empty match almost always means a wrong mount
// or date template.
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", pattern, ErrNoFiles)
	}
	sort.Strings(matches)
	return matches, nil
}

// issuanceToken extracts the raw timestamp token from a forecast filename:
// the segment after the last underscore of the base name, extension
// stripped. Files without an underscore use the whole base name.
func issuanceToken(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		return base[i+1:]
	}
	return base
}

// parseIssuance resolves a forecast file's issuance time and raw token from
// its name. The token doubles as the deterministic tie-breaker when two
// files parse to the same instant.
func parseIssuance(path, layout string) (time.Time, string, error) {
	tok := issuanceToken(path)
	t, err := time.ParseInLocation(layout, tok, time.UTC)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("forecast file %s: cannot parse issuance %q with layout %s", path, tok, layout)
	}
	return t, tok, nil
}
