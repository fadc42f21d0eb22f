package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return buf.String()
}

func TestConfigCommand_MasksSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "pipeline:\n  name: accent-test\nsinks:\n  s3:\n    bucket: reports\n    access_key: AKIA\n    secret_key: hunter2\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "--config", path, "config")
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked:\n%s", out)
	}
	for _, want := range []string{"name: accent-test", "bucket: reports", "********"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  version: 9.9.9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := execute(t, "--config", path, "version"); out != "accent-pipeline 9.9.9\n" {
		t.Fatalf("version = %q", out)
	}
}

func TestAnalyzeCommand_RequiresSource(t *testing.T) {
	rootCmd.SetArgs([]string{"analyze"})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}
