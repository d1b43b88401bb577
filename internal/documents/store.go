package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/config"
	"curator/internal/fileutil"
	"curator/internal/textutil"
)

// Partition identifies one of the three document locations.
type Partition string

const (
	PartitionPending  Partition = "pending"
	PartitionApproved Partition = "approved"
	PartitionRejected Partition = "rejected"
)

// Store reads and writes documents across the three partitions.
type Store struct {
	pendingDir  string
	approvedDir string
	rejectedDir string
}

// NewStore builds a document store over the configured partition directories.
func NewStore(cfg *config.Config) *Store {
	return &Store{
		pendingDir:  cfg.Paths.DocumentsDir,
		approvedDir: cfg.Paths.ApprovedDir,
		rejectedDir: cfg.Paths.RejectedDir,
	}
}

// Dir returns the directory backing a partition.
func (s *Store) Dir(partition Partition) string {
	switch partition {
	case PartitionApproved:
		return s.approvedDir
	case PartitionRejected:
		return s.rejectedDir
	default:
		return s.pendingDir
	}
}

// PathFor returns the absolute path a document name resolves to inside a
// partition. Absolute references resolve to themselves.
func (s *Store) PathFor(name string, partition Partition) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir(partition), name)
}

// IsRemoteRef reports whether a document reference points at a remote URL
// rather than a local file.
func IsRemoteRef(ref string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}

// Exists reports whether a named document is present in a partition.
func (s *Store) Exists(name string, partition Partition) bool {
	info, err := os.Stat(s.PathFor(name, partition))
	return err == nil && !info.IsDir()
}

// Locate finds which partition holds a named document.
func (s *Store) Locate(name string) (Partition, bool) {
	for _, partition := range []Partition{PartitionPending, PartitionApproved, PartitionRejected} {
		if s.Exists(name, partition) {
			return partition, true
		}
	}
	return "", false
}

// Read returns the raw bytes of a document. No content validation happens
// here; callers gate on IsPDF when it matters.
func (s *Store) Read(name string, partition Partition) ([]byte, error) {
	data, err := os.ReadFile(s.PathFor(name, partition))
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", name, err)
	}
	return data, nil
}

// Write stores document bytes under a sanitized name in a partition and
// returns the name actually used.
func (s *Store) Write(name string, partition Partition, data []byte) (string, error) {
	clean := textutil.SanitizeFileName(name)
	if clean == "" {
		return "", fmt.Errorf("write document: empty name")
	}
	dir := s.Dir(partition)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create partition dir: %w", err)
	}
	path := filepath.Join(dir, clean)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document %q: %w", clean, err)
	}
	return clean, nil
}

// List returns the PDF filenames in a partition, sorted lexicographically so
// downstream matching is deterministic.
func (s *Store) List(partition Partition) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(partition))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list partition %s: %w", partition, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Relocate moves a document between partitions. Relocation is a move, never
// a copy: the source partition no longer holds the file afterwards.
func (s *Store) Relocate(name string, from, to Partition) error {
	src := s.PathFor(name, from)
	dstDir := s.Dir(to)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create partition dir: %w", err)
	}
	dst := filepath.Join(dstDir, filepath.Base(name))
	if err := fileutil.MoveFile(src, dst); err != nil {
		return fmt.Errorf("relocate %q to %s: %w", name, to, err)
	}
	return nil
}

// CopyTo duplicates a document into another partition, deliberately leaving
// the original in place. Used by the manual-approval path only.
func (s *Store) CopyTo(name string, from, to Partition) error {
	src := s.PathFor(name, from)
	dstDir := s.Dir(to)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create partition dir: %w", err)
	}
	dst := filepath.Join(dstDir, filepath.Base(name))
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("copy %q to %s: %w", name, to, err)
	}
	return nil
}

// Remove deletes a document from a partition.
func (s *Store) Remove(name string, partition Partition) error {
	if err := os.Remove(s.PathFor(name, partition)); err != nil {
		return fmt.Errorf("remove document %q: %w", name, err)
	}
	return nil
}
