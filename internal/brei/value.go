package brei

import "strings"

// TemplateValue is the tagged variant over which gather/substitute are
// defined by exhaustive case (spec §4.1, design note in spec §9: "dynamic
// dispatch on templated values becomes a tagged variant"). Only strings
// carry placeholders directly; sequences and records recurse.
type TemplateValue interface {
	isTemplateValue()
}

// Scalar is a plain template string, e.g. "${name}-build".
type Scalar string

// Sequence is a homogeneous list of template values.
type Sequence []TemplateValue

// Record is a set of named fields, recursed into by field name.
type Record map[string]TemplateValue

// Absent represents a field that was not supplied; gather/substitute are
// the identity on it.
type Absent struct{}

func (Scalar) isTemplateValue()   {}
func (Sequence) isTemplateValue() {}
func (Record) isTemplateValue()   {}
func (Absent) isTemplateValue()   {}

// Gather collects every placeholder identifier referenced anywhere within v.
func Gather(v TemplateValue) map[string]struct{} {
	out := map[string]struct{}{}
	gatherInto(v, out)
	return out
}

func gatherInto(v TemplateValue, out map[string]struct{}) {
	switch x := v.(type) {
	case Scalar:
		for _, id := range scanPlaceholders(string(x)) {
			out[id] = struct{}{}
		}
	case Sequence:
		for _, e := range x {
			gatherInto(e, out)
		}
	case Record:
		for _, f := range x {
			gatherInto(f, out)
		}
	case Absent:
		// identity: nothing to gather
	}
}

// Substitute safely replaces placeholders in v from env. Unknown
// placeholders are left literal (safe substitution never fails).
func Substitute(v TemplateValue, env map[string]string) TemplateValue {
	switch x := v.(type) {
	case Scalar:
		return Scalar(substituteString(string(x), env))
	case Sequence:
		out := make(Sequence, len(x))
		for i, e := range x {
			out[i] = Substitute(e, env)
		}
		return out
	case Record:
		out := make(Record, len(x))
		for k, f := range x {
			out[k] = Substitute(f, env)
		}
		return out
	case Absent:
		return x
	default:
		return v
	}
}

// GatherString and SubstituteString are the common-case entry points for
// plain strings, used throughout the engine wherever a single templated
// field (not a whole record) needs resolving.
func GatherString(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, id := range scanPlaceholders(s) {
		out[id] = struct{}{}
	}
	return out
}

func SubstituteString(s string, env map[string]string) string {
	return substituteString(s, env)
}

// --- grammar: $NAME, ${NAME}, $$ literal (spec §4.1) ---------------------

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// scanPlaceholders returns, in order of first appearance but de-duplicated,
// every identifier referenced via $NAME or ${NAME}.
func scanPlaceholders(s string) []string {
	seen := map[string]struct{}{}
	var order []string
	walkPlaceholders(s, func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	})
	return order
}

// walkPlaceholders scans s left to right, invoking emit(id) for every
// well-formed $NAME / ${NAME} placeholder. $$ is treated as a literal
// dollar and does not invoke emit. Malformed sequences (a bare "$" not
// followed by an identifier or "{" or another "$") are passed through
// untouched, consistent with "all other characters pass through".
func walkPlaceholders(s string, emit func(id string)) {
	i := 0
	n := len(s)
	for i < n {
		if s[i] != '$' {
			i++
			continue
		}
		// s[i] == '$'
		if i+1 < n && s[i+1] == '$' {
			i += 2
			continue
		}
		if i+1 < n && s[i+1] == '{' {
			j := i + 2
			for j < n && s[j] != '}' {
				j++
			}
			if j < n && j > i+2 && isValidIdent(s[i+2:j]) {
				emit(s[i+2 : j])
				i = j + 1
				continue
			}
			i++
			continue
		}
		if i+1 < n && isIdentStart(s[i+1]) {
			j := i + 1
			for j < n && isIdentCont(s[j]) {
				j++
			}
			emit(s[i+1 : j])
			i = j
			continue
		}
		i++
	}
}

func isValidIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}

// substituteString performs the replacement pass described by walkPlaceholders,
// substituting known identifiers from env and leaving unknown ones (and $$,
// which becomes a literal $) as-is.
func substituteString(s string, env map[string]string) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	n := len(s)
	for i < n {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < n && s[i+1] == '$' {
			b.WriteByte('$')
			i += 2
			continue
		}
		if i+1 < n && s[i+1] == '{' {
			j := i + 2
			for j < n && s[j] != '}' {
				j++
			}
			if j < n && j > i+2 && isValidIdent(s[i+2:j]) {
				name := s[i+2 : j]
				if v, ok := env[name]; ok {
					b.WriteString(v)
				} else {
					b.WriteString(s[i : j+1]) // leave "${name}" literal
				}
				i = j + 1
				continue
			}
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < n && isIdentStart(s[i+1]) {
			j := i + 1
			for j < n && isIdentCont(s[j]) {
				j++
			}
			name := s[i+1 : j]
			if v, ok := env[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(s[i:j]) // leave "$name" literal
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
