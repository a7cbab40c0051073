package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Options configures how delimited input files are read. The zero value is
// usable: comma delimiter, UTF-8 input, RFC 3339 horizon timestamps.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// Encoding names the input text encoding; see decodingReader.
	Encoding string

	// TimestampLayout parses the forecast horizon Timestamp column. When the
	// configured layout fails, a bare date ("2006-01-02") is tried before the
	// row is rejected. Defaults to time.RFC3339.
	TimestampLayout string
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

func (o Options) timestampLayout() string {
	if o.TimestampLayout == "" {
		return time.RFC3339
	}
	return o.TimestampLayout
}

const utf8BOM = "\uFEFF"

// readTable reads all body rows of a delimited file with a fixed column
// count. The header row (line 1) is skipped unconditionally; every other row
// must have exactly want fields or the read fails with a *SchemaError.
func readTable(path string, opt Options, want int) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decodingReader(f, opt.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = opt.comma()
	// Field count is enforced below so that mismatches surface as
	// *SchemaError with file/line context instead of csv.ErrFieldCount.
	cr.FieldsPerRecord = -1

	var out []row
	for line := 1; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SchemaError{File: path, Line: line, Reason: err.Error()}
		}
		if line == 1 {
			// Header row: skipped, not validated. Schemas are positional.
			continue
		}
		if len(fields) != want {
			return nil, &SchemaError{
				File: path, Line: line,
				Reason: fmt.Sprintf("expected %d fields, got %d", want, len(fields)),
			}
		}
		if len(fields) > 0 {
			fields[0] = strings.TrimPrefix(fields[0], utf8BOM)
		}
		out = append(out, row{file: path, line: line, fields: fields})
	}
	return out, nil
}

// row is one parsed body line plus enough context to build schema errors.
type row struct {
	file   string
	line   int
	fields []string
}

func (r row) str(i int) string { return strings.TrimSpace(r.fields[i]) }

func (r row) int64(i int, col string) (int64, error) {
	s := r.str(i)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &SchemaError{File: r.file, Line: r.line, Column: col,
			Reason: fmt.Sprintf("not an integer: %q", s)}
	}
	return v, nil
}

func (r row) decimal(i int, col string) (decimal.Decimal, error) {
	s := r.str(i)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &SchemaError{File: r.file, Line: r.line, Column: col,
			Reason: fmt.Sprintf("not a number: %q", s)}
	}
	return d, nil
}

func (r row) time(i int, col, layout string) (time.Time, error) {
	s := r.str(i)
	if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, &SchemaError{File: r.file, Line: r.line, Column: col,
		Reason: fmt.Sprintf("not a timestamp (layout %s): %q", layout, s)}
}
