package main

import (
	"strings"
	"testing"
)

func TestRenderStarterTOMLIncludesCreates(t *testing.T) {
	out := renderStarterTOML("hello", "echo hi", "out.txt")
	for _, want := range []string{`name = "hello"`, `script = "echo hi"`, `creates = ["out.txt"]`} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered TOML missing %q, got:\n%s", want, out)
		}
	}
}

func TestRenderStarterTOMLOmitsEmptyCreates(t *testing.T) {
	out := renderStarterTOML("hello", "echo hi", "")
	if strings.Contains(out, "creates") {
		t.Fatalf("expected no creates key, got:\n%s", out)
	}
}
