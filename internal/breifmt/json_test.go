package breifmt

import (
	"errors"
	"path/filepath"
	"testing"

	"brei/internal/brei"
)

func TestLoadJSONBasicProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.json", `{
		"environment": {"greeting": "hello"},
		"task": [{"name": "hi", "script": "echo $greeting"}]
	}`)
	prog, err := LoadJSON(path)
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

func TestLoadJSONRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.json", `{"bogus": true, "task": []}`)
	_, err := LoadJSON(path)
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestLoadJSONSubsection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"tool": {
			"other": {"ignored": true},
			"brei": {
				"environment": {"greeting": "hi"},
				"task": [{"name": "hi", "script": "echo $greeting"}]
			}
		}
	}`)
	prog, err := LoadJSON(path + "[tool.brei]")
	if err != nil {
		t.Fatal(err)
	}
	if prog.Environment["greeting"] != "hi" {
		t.Fatalf("environment = %v", prog.Environment)
	}
	if len(prog.Tasks) != 1 {
		t.Fatalf("tasks = %+v", prog.Tasks)
	}
}

func TestLoadJSONMissingSubsectionIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brei.json", `{"task": []}`)
	_, err := LoadJSON(path + "[tool.brei]")
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestLoadJSONMissingFileIsConfigError(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestJSONLoaderSatisfiesIncludeLoader(t *testing.T) {
	var _ brei.IncludeLoader = JSONLoader{}
}
