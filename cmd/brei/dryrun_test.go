package main

import (
	"os"
	"path/filepath"
	"testing"

	"brei/internal/brei"
	"brei/internal/breifmt"
)

func buildTestDatabase(t *testing.T) *brei.Database {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "brei.toml")
	if err := os.WriteFile(path, []byte(`
[[task]]
name = "hello"
description = "prints a greeting"
script = "echo hi"
`), 0o644); err != nil {
		t.Fatal(err)
	}
	prog, err := breifmt.LoadTOML(path)
	if err != nil {
		t.Fatal(err)
	}
	db := brei.NewDatabase(brei.DefaultRunners(), false, 0)
	if err := brei.Resolve(db, prog, breifmt.TOMLLoader{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestDryRunTargetsDescribesKnownTarget(t *testing.T) {
	db := buildTestDatabase(t)
	if err := dryRunTargets(db, []brei.Target{brei.PhonyTarget{Name: "hello"}}); err != nil {
		t.Fatal(err)
	}
}

func TestDryRunTargetsReportsUnknownTarget(t *testing.T) {
	db := buildTestDatabase(t)
	if err := dryRunTargets(db, []brei.Target{brei.PhonyTarget{Name: "nope"}}); err != nil {
		t.Fatal(err)
	}
}

func TestListIncludesDescription(t *testing.T) {
	db := buildTestDatabase(t)
	entries := db.List()
	found := false
	for _, e := range entries {
		if e.Target.String() == "#hello" {
			found = true
			if e.Description != "prints a greeting" {
				t.Fatalf("description = %q", e.Description)
			}
		}
	}
	if !found {
		t.Fatal("expected #hello to be registered")
	}
}
