package brei

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Target is the sealed tagged union that keys the node database: a File
// path, a Phony name, or a Variable reference (spec §3). The unexported
// isTarget() method prevents external packages from implementing it,
// mirroring the sealed dsl.Node interface of the teacher.
type Target interface {
	isTarget()
	String() string
}

// FileTarget addresses a file on disk. Path is normalized to a canonical
// relative form (via filepath.Clean) so that "./a" and "a" compare equal.
type FileTarget struct {
	Path string
}

// PhonyTarget addresses a named, file-less goal.
type PhonyTarget struct {
	Name string
}

// VariableTarget addresses the value of a declared variable.
type VariableTarget struct {
	Name string
}

func (FileTarget) isTarget()     {}
func (PhonyTarget) isTarget()    {}
func (VariableTarget) isTarget() {}

func (t FileTarget) String() string     { return t.Path }
func (t PhonyTarget) String() string    { return "#" + t.Name }
func (t VariableTarget) String() string { return "var(" + t.Name + ")" }

// varRefRe matches the var(IDENT) surface form.
var varRefRe = regexp.MustCompile(`^var\(([A-Za-z_][A-Za-z0-9_]*)\)$`)

// ParseTarget maps a surface string to a Target by inspecting its prefix
// (spec §4.2): leading "#" -> Phony, "var(IDENT)" -> Variable, otherwise File.
func ParseTarget(s string) Target {
	if strings.HasPrefix(s, "#") {
		return PhonyTarget{Name: strings.TrimPrefix(s, "#")}
	}
	if m := varRefRe.FindStringSubmatch(s); m != nil {
		return VariableTarget{Name: m[1]}
	}
	return FileTarget{Path: normalizePath(s)}
}

// normalizePath canonicalizes a file path for use as a map key: relative
// paths are cleaned, and a leading "./" is stripped by filepath.Clean itself.
func normalizePath(p string) string {
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}

// TargetEqual reports whether two targets denote the same node-database key.
func TargetEqual(a, b Target) bool {
	switch x := a.(type) {
	case FileTarget:
		y, ok := b.(FileTarget)
		return ok && x.Path == y.Path
	case PhonyTarget:
		y, ok := b.(PhonyTarget)
		return ok && x.Name == y.Name
	case VariableTarget:
		y, ok := b.(VariableTarget)
		return ok && x.Name == y.Name
	default:
		return false
	}
}
