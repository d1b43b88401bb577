package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
documents_dir = %q
store_path = %q
log_dir = %q
`,
		filepath.Join(base, "documents"),
		filepath.Join(base, "corpus.db"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestStatusEmptyCorpus(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", configPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Corpus") || !strings.Contains(out, "Documents") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestReconcileEmptyCorpus(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", configPath, "reconcile")
	if err != nil {
		t.Fatalf("reconcile: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All document references are valid.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "curator", "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(content), "[paths]") {
		t.Fatalf("sample missing paths section:\n%s", content)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestCategorizeRequiresRow(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	if _, err := runCommand(t, "--config", configPath, "categorize"); err == nil {
		t.Fatal("expected error without --row")
	}
}
