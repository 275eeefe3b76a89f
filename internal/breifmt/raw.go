// Package breifmt reads a declared brei program (spec §6) from TOML or
// JSON and converts it into the format-agnostic brei.Program the core
// resolver consumes. The core never imports this package; breifmt
// depends on internal/brei, not the other way around.
package breifmt

// RawProgram is the direct TOML/JSON decoding target for a program file:
// every field is the loosely-typed surface form spec.md §6 declares.
// Struct tags cover both formats, since the schema is the same whether
// the source is TOML or JSON.
type RawProgram struct {
	Environment map[string]string       `toml:"environment" json:"environment"`
	Task        []RawTaskDecl           `toml:"task" json:"task"`
	Template    map[string]RawTaskDecl  `toml:"template" json:"template"`
	Call        []RawTemplateCall       `toml:"call" json:"call"`
	Include     []string                `toml:"include" json:"include"`
	Runner      map[string]RawRunner    `toml:"runner" json:"runner"`
}

// RawTaskDecl is the raw form of both a Task and a Template body (spec.md
// §3: "Template is structurally identical to a Task"). Field names match
// the task record keys of spec.md §6 exactly.
type RawTaskDecl struct {
	Creates     []string `toml:"creates" json:"creates"`
	Requires    []string `toml:"requires" json:"requires"`
	Name        string   `toml:"name" json:"name"`
	Runner      string   `toml:"runner" json:"runner"`
	Path        string   `toml:"path" json:"path"`
	Script      string   `toml:"script" json:"script"`
	Stdin       string   `toml:"stdin" json:"stdin"`
	Stdout      string   `toml:"stdout" json:"stdout"`
	Description string   `toml:"description" json:"description"`
	Force       bool     `toml:"force" json:"force"`
}

// RawTemplateCall is the raw form of a TemplateCall. Args values are
// either a bare string or a list of strings (spec.md §3); decoded as
// `any` here so both shapes survive the format decode, and normalized by
// convert.go afterward.
type RawTemplateCall struct {
	Template string         `toml:"template" json:"template"`
	Args     map[string]any `toml:"args" json:"args"`
	Collect  string         `toml:"collect" json:"collect"`
	Join     string         `toml:"join" json:"join"`
}

// RawRunner is the raw form of a Runner declaration.
type RawRunner struct {
	Command string   `toml:"command" json:"command"`
	Args    []string `toml:"args" json:"args"`
}
