package extract

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned (wrapped) when a path pattern matches no files.
// Callers can test for it with errors.Is.
var ErrNoFiles = errors.New("no files match pattern")

// SchemaError reports a row that does not conform to a dataset's fixed
// schema: wrong field count or a value that cannot be parsed as the declared
// column type. Any SchemaError is fatal to the whole run; there is no
// row-level recovery.
type SchemaError struct {
	File   string // source file path
	Line   int    // 1-based line number (header is line 1)
	Column string // column name, empty for field-count mismatches
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: column %s: %s", e.File, e.Line, e.Column, e.Reason)
}
