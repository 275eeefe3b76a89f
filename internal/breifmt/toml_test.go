package breifmt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"brei/internal/brei"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOMLBasicProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.toml", `
[environment]
greeting = "hello"

[[task]]
name = "hi"
script = "echo $greeting"
`)
	prog, err := LoadTOML(path)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Environment["greeting"] != "hello" {
		t.Fatalf("environment = %v", prog.Environment)
	}
	if len(prog.Tasks) != 1 || prog.Tasks[0].Name != "hi" {
		t.Fatalf("tasks = %+v", prog.Tasks)
	}
}

func TestLoadTOMLRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.toml", `
bogus = "nope"

[[task]]
name = "hi"
script = "echo hi"
`)
	_, err := LoadTOML(path)
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestLoadTOMLSubsection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pyproject.toml", `
[tool.other]
ignored = "true"

[tool.brei.environment]
greeting = "hi"

[[tool.brei.task]]
name = "hi"
script = "echo $greeting"
`)
	prog, err := LoadTOML(path + "[tool.brei]")
	if err != nil {
		t.Fatal(err)
	}
	if prog.Environment["greeting"] != "hi" {
		t.Fatalf("environment = %v", prog.Environment)
	}
	if len(prog.Tasks) != 1 || prog.Tasks[0].Name != "hi" {
		t.Fatalf("tasks = %+v", prog.Tasks)
	}
}

func TestLoadTOMLMissingSubsectionIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.toml", `
[tool.other]
x = "y"
`)
	_, err := LoadTOML(path + "[tool.brei]")
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestLoadTOMLMissingFileIsConfigError(t *testing.T) {
	_, err := LoadTOML(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestTOMLLoaderSatisfiesIncludeLoader(t *testing.T) {
	var _ brei.IncludeLoader = TOMLLoader{}
}
