package breifmt

import (
	"strings"
	"testing"

	"brei/internal/brei"
)

func TestDumpProgramProducesReadableYAML(t *testing.T) {
	prog := brei.Program{
		Environment: map[string]string{"greeting": "hi"},
		Tasks: []brei.TaskDecl{
			{Name: "hello", Creates: []string{"out"}, Script: "echo hi"},
		},
		Templates: map[string]brei.TaskDecl{"t": {Script: "x"}},
		Includes:  []string{"other.toml"},
	}

	out, err := DumpProgram(prog)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	for _, want := range []string{"greeting: hi", "name: hello", "templates:", "- t", "other.toml"} {
		if !strings.Contains(text, want) {
			t.Fatalf("dump missing %q, got:\n%s", want, text)
		}
	}
}

func TestDumpProgramEmptyProgram(t *testing.T) {
	out, err := DumpProgram(brei.Program{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty YAML output even for an empty program")
	}
}
