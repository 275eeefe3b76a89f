package breifmt

import (
	"sort"

	"gopkg.in/yaml.v3"

	"brei/internal/brei"
)

// outProgram is the debug-dump shape for `brei show`: a
// flattened, human-readable view of a declared Program's tasks,
// templates, environment, and includes. Grounded on the teacher's own
// outNode type and yaml.Marshal call in main.go, which renders its
// resolved node tree the same way for inspection.
type outProgram struct {
	Environment map[string]string `yaml:"environment,omitempty"`
	Tasks       []outTask         `yaml:"tasks,omitempty"`
	Templates   []string          `yaml:"templates,omitempty"`
	Includes    []string          `yaml:"includes,omitempty"`
}

type outTask struct {
	Name     string   `yaml:"name,omitempty"`
	Creates  []string `yaml:"creates,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
	Runner   string   `yaml:"runner,omitempty"`
	Script   string   `yaml:"script,omitempty"`
}

// DumpProgram renders prog as human-readable YAML for `brei show`
// (SPEC_FULL.md §2's debug tree dump), reusing the
// teacher's own yaml.v3 dependency for the same purpose it served in
// main.go: a readable dump of a declared/resolved structure.
func DumpProgram(prog brei.Program) ([]byte, error) {
	out := outProgram{
		Environment: prog.Environment,
		Includes:    prog.Includes,
	}
	for _, t := range prog.Tasks {
		out.Tasks = append(out.Tasks, outTask{
			Name:     t.Name,
			Creates:  t.Creates,
			Requires: t.Requires,
			Runner:   t.Runner,
			Script:   t.Script,
		})
	}
	for name := range prog.Templates {
		out.Templates = append(out.Templates, name)
	}
	sort.Strings(out.Templates)

	return yaml.Marshal(out)
}
