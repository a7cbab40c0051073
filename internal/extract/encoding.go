package extract

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// decodingReader wraps r so that its bytes are transcoded from the named
// source encoding to UTF-8. The empty name (and the UTF-8 aliases) return r
// unchanged. Names follow the conventions of the upstream extracts this job
// consumes; unknown names are an error rather than a silent passthrough.
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	switch name {
	case "", "utf8", "utf-8":
		return r, nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder().Reader(r), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	case "iso-8859-1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported input encoding %q", name)
	}
}
