package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompilePrintsGraph(t *testing.T) {
	out, err := run(t, "compile", "/TASK/(TITLE,STATUS,.*)")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(out, "start=") || !strings.Contains(out, "accept=") {
		t.Errorf("expected graph dump, got %q", out)
	}
}

func TestPrettyRoundTrips(t *testing.T) {
	out, err := run(t, "pretty", "/TASK/(TITLE,STATUS,.*)")
	if err != nil {
		t.Fatalf("pretty failed: %v", err)
	}
	if strings.TrimSpace(out) != "/TASK/(TITLE,STATUS,.*)" {
		t.Errorf("expected round-tripped pattern, got %q", out)
	}
}

func TestCompileRejectsBadPattern(t *testing.T) {
	_, err := run(t, "compile", "TASK/(")
	if err == nil {
		t.Fatal("expected a parse error for a pattern missing its leading '/'")
	}
}

func TestMatchAgainstTextTree(t *testing.T) {
	dir := t.TempDir()
	treeFile := filepath.Join(dir, "task.tree")
	if err := os.WriteFile(treeFile, []byte(`(TASK (TITLE:"ship it") (STATUS:"open"))`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "match", "/TASK/(TITLE,STATUS)", treeFile, "--captures")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.HasPrefix(out, "MATCH") {
		t.Errorf("expected a MATCH result, got %q", out)
	}
}

func TestMatchWithLibrary(t *testing.T) {
	dir := t.TempDir()
	treeFile := filepath.Join(dir, "task.tree")
	if err := os.WriteFile(treeFile, []byte(`(TASK (TITLE:"ship it") (STATUS:"open"))`), 0o644); err != nil {
		t.Fatal(err)
	}
	libFile := filepath.Join(dir, "patterns.yaml")
	if err := os.WriteFile(libFile, []byte("patterns:\n  TASK_PREFIX: \"/TASK/(TITLE,STATUS)\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "match", "unused", treeFile, "--lib", libFile, "--name", "TASK_PREFIX")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.HasPrefix(out, "MATCH") {
		t.Errorf("expected a MATCH result, got %q", out)
	}
}

func TestConvertTextToJSON(t *testing.T) {
	dir := t.TempDir()
	treeFile := filepath.Join(dir, "task.tree")
	if err := os.WriteFile(treeFile, []byte(`(TASK (TITLE:"ship it"))`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "convert", treeFile, "--to", "json")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, `"context"`) {
		t.Errorf("expected a JSON tree, got %q", out)
	}
}
