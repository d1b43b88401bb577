package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteSidecar writes a plain-text snapshot of a record's fields next to a
// filed document, named after the document with a .txt extension. The
// snapshot survives independently of the record store.
func (s *Store) WriteSidecar(name string, partition Partition, fieldOrder []string, fields map[string]string) error {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	path := filepath.Join(s.Dir(partition), base+".txt")

	var b strings.Builder
	for _, field := range fieldOrder {
		fmt.Fprintf(&b, "%s: %s\n", field, fields[field])
	}

	if err := os.MkdirAll(s.Dir(partition), 0o755); err != nil {
		return fmt.Errorf("create partition dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write sidecar %q: %w", path, err)
	}
	return nil
}
