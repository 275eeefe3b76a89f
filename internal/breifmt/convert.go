package breifmt

import (
	"fmt"
	"strings"

	"brei/internal/brei"
)

// ConvertProgram maps a RawProgram, already strictly decoded from TOML or
// JSON (unknown-key rejection happens at the format layer), into the
// brei.Program the core resolver consumes. This is the schema-driven
// raw→typed constructor spec.md §9 calls for "in place of runtime
// reflection": every record is converted by a dedicated function that
// rejects malformed shapes with brei.ErrConfig, grounded on the
// teacher's validate_raw.go phase-1 checks and typedef.go's
// required/optional/unknown-key convention.
func ConvertProgram(raw RawProgram) (brei.Program, error) {
	prog := brei.Program{
		Environment: raw.Environment,
		Includes:    raw.Include,
	}

	if len(raw.Task) > 0 {
		prog.Tasks = make([]brei.TaskDecl, len(raw.Task))
		for i, rt := range raw.Task {
			prog.Tasks[i] = convertTaskDecl(rt)
		}
	}

	if len(raw.Template) > 0 {
		prog.Templates = make(map[string]brei.TaskDecl, len(raw.Template))
		for name, rt := range raw.Template {
			prog.Templates[name] = convertTaskDecl(rt)
		}
	}

	if len(raw.Call) > 0 {
		prog.Calls = make([]brei.TemplateCall, len(raw.Call))
		for i, rc := range raw.Call {
			call, err := convertTemplateCall(rc)
			if err != nil {
				return brei.Program{}, fmt.Errorf("call[%d] (%s): %w", i, rc.Template, err)
			}
			prog.Calls[i] = call
		}
	}

	if len(raw.Runner) > 0 {
		prog.Runners = make(map[string]brei.Runner, len(raw.Runner))
		for name, rr := range raw.Runner {
			prog.Runners[name] = brei.Runner{Command: rr.Command, Args: rr.Args}
		}
	}

	return prog, nil
}

// convertTaskDecl copies a RawTaskDecl into a brei.TaskDecl. The two
// structs share field names by design, so this is a direct field-by-field
// copy rather than a reflective one — spec.md §9's "hand-written mapping
// in place of reflection".
func convertTaskDecl(r RawTaskDecl) brei.TaskDecl {
	return brei.TaskDecl{
		Creates:     r.Creates,
		Requires:    r.Requires,
		Name:        r.Name,
		Runner:      r.Runner,
		Path:        r.Path,
		Script:      r.Script,
		Stdin:       r.Stdin,
		Stdout:      r.Stdout,
		Description: r.Description,
		Force:       r.Force,
	}
}

// convertTemplateCall converts a RawTemplateCall, normalizing its Args
// values (string or list) and case-folding its join enum.
func convertTemplateCall(r RawTemplateCall) (brei.TemplateCall, error) {
	join, err := convertJoin(r.Join)
	if err != nil {
		return brei.TemplateCall{}, err
	}

	var args map[string]brei.ArgValue
	if len(r.Args) > 0 {
		args = make(map[string]brei.ArgValue, len(r.Args))
		for name, v := range r.Args {
			av, err := convertArgValue(v)
			if err != nil {
				return brei.TemplateCall{}, fmt.Errorf("args[%s]: %w", name, err)
			}
			args[name] = av
		}
	}

	return brei.TemplateCall{
		Template: r.Template,
		Args:     args,
		Collect:  r.Collect,
		Join:     join,
	}, nil
}

// convertJoin case-folds the join enum ("inner"/"outer", any case) to a
// brei.JoinKind. An empty string is the spec's documented default (inner).
func convertJoin(s string) (brei.JoinKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inner":
		return brei.JoinInner, nil
	case "outer":
		return brei.JoinOuter, nil
	default:
		return 0, fmt.Errorf("%w: join must be \"inner\" or \"outer\", got %q", brei.ErrConfig, s)
	}
}

// convertArgValue normalizes a decoded args value to a brei.ArgValue.
// Both TOML and JSON decode a homogeneous list into []any (or []string,
// for a typed decode path) when the destination field is `any`; a plain
// string decodes as `string`. Anything else is a schema violation.
func convertArgValue(v any) (brei.ArgValue, error) {
	switch x := v.(type) {
	case string:
		return brei.ScalarArg(x), nil
	case []string:
		return brei.ListArg(x), nil
	case []any:
		ss := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return brei.ArgValue{}, fmt.Errorf("%w: list element %d is not a string (got %T)", brei.ErrConfig, i, e)
			}
			ss[i] = s
		}
		return brei.ListArg(ss), nil
	default:
		return brei.ArgValue{}, fmt.Errorf("%w: expected a string or list of strings, got %T", brei.ErrConfig, v)
	}
}
