package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"brei/internal/brei"
	"brei/internal/breifmt"
)

// appName is the single source of truth for the program-file basenames
// this CLI looks for.
const appName = "brei"

// discoverProgramPath implements spec §6's default discovery order,
// extended per SPEC_FULL §6 to recognize brei.json as a peer of
// brei.toml: explicit file -> brei.toml -> brei.json -> a [tool.brei]
// table nested inside pyproject.toml. explicit, if non-empty, is
// returned unchanged (the caller already took it from --file).
func discoverProgramPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, name := range []string{appName + ".toml", appName + ".json"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	if _, err := os.Stat("pyproject.toml"); err == nil {
		return "pyproject.toml[tool." + appName + "]", nil
	}
	return "", fmt.Errorf(
		"no program file found: pass --file, or create %s.toml, %s.json, or a [tool.%s] table in pyproject.toml",
		appName, appName, appName,
	)
}

// loaderFor picks the breifmt loader matching path's extension, ignoring
// any trailing [a.b.c] subsection suffix (spec §6: "TOML or JSON; same
// logical schema").
func loaderFor(path string) brei.IncludeLoader {
	base := path
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	if filepath.Ext(base) == ".json" {
		return breifmt.JSONLoader{}
	}
	return breifmt.TOMLLoader{}
}

// loadProgram discovers (or uses the explicit) program file, parses it
// with the matching format loader, and resolves it into db.
func loadProgram(explicit string, db *brei.Database) error {
	path, err := discoverProgramPath(explicit)
	if err != nil {
		return err
	}
	loader := loaderFor(path)

	var prog brei.Program
	switch l := loader.(type) {
	case breifmt.TOMLLoader:
		prog, err = l.Load(path)
	case breifmt.JSONLoader:
		prog, err = l.Load(path)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return brei.Resolve(db, prog, loader)
}
