package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Execute materializes the plan under root, creating the directory if
// needed, and finishes with the manifest file (skipped when manifestName is
// empty). Existing files are overwritten: derived outputs are recomputed in
// full on every run, which is what keeps re-runs byte-identical.
func Execute(plan []Export, root, manifestName string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, e := range plan {
		path := filepath.Join(root, e.Filename())
		if err := os.WriteFile(path, e.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write export %s: %w", e.Filename(), err)
		}
	}
	if manifestName == "" {
		return nil
	}

	f, err := os.Create(filepath.Join(root, manifestName))
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := WriteManifest(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	return f.Close()
}
