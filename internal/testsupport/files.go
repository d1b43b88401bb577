package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WritePDF writes a minimal file carrying the PDF magic bytes followed by
// enough filler to pass size checks.
func WritePDF(t testing.TB, path string) {
	t.Helper()

	content := append([]byte("%PDF-1.4\n"), []byte("curator test document\n%%EOF\n")...)
	writeFile(t, path, content)
}

// WriteHTML writes a file that looks like an HTML error page.
func WriteHTML(t testing.TB, path string) {
	t.Helper()

	writeFile(t, path, []byte("<html><body>service unavailable</body></html>\n"))
}

func writeFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
