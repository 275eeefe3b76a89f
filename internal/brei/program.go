package brei

import (
	"fmt"
	"os"
	"sort"
)

// Program is the parsed, format-agnostic shape of one brei program file
// (spec §4.7/§6): the environment, declared tasks, named templates, the
// calls that expand them, runner overrides, and includes of other
// program files. breifmt is responsible for producing this from TOML or
// JSON; this package knows nothing of either format.
type Program struct {
	Environment map[string]string
	Tasks       []TaskDecl
	Templates   map[string]TaskDecl
	Calls       []TemplateCall
	Runners     map[string]Runner
	Includes    []string
}

// IncludeLoader resolves an include path (already substituted against
// known variables) to the Program it names. The concrete implementation
// lives in breifmt, which knows how to read and parse a program file;
// this package only needs the capability.
type IncludeLoader interface {
	Load(path string) (Program, error)
}

// delayedTask is a task declaration whose Creates/Requires/Name/Stdin/
// Stdout/Path still reference unresolved placeholders (spec §4.7 step
// 5): its identity as a graph node cannot be fixed until those variables
// are known.
type delayedTask struct {
	decl TaskDecl
}

// deferredCall is a TemplateCall naming a template not yet known (spec
// §4.7 step 4): it is retried once more templates have been indexed,
// typically after resolving an include.
type deferredCall struct {
	call TemplateCall
}

// resolver carries the state threaded through one top-level Resolve
// call and all of its recursively-resolved includes (spec §4.7: "from
// step 1, under the same database"). Templates, delayed tasks, and
// deferred calls accumulate across every file visited.
type resolver struct {
	db        *Database
	loader    IncludeLoader
	templates map[string]TaskDecl
	delayed   []delayedTask
	deferred  []deferredCall
}

// Resolve populates db from prog, following spec §4.7's algorithm:
// register the environment, merge runners, index templates, expand
// calls, defer what can't yet be resolved, recurse into includes, then
// retry deferred work until only genuinely unresolvable names remain.
func Resolve(db *Database, prog Program, loader IncludeLoader) error {
	r := &resolver{
		db:        db,
		loader:    loader,
		templates: map[string]TaskDecl{},
	}
	if err := r.resolveFile(prog); err != nil {
		return err
	}
	return r.finalize()
}

// resolveFile runs steps 1-7 of spec §4.7 for one Program value,
// recursing into its includes under the same resolver state.
func (r *resolver) resolveFile(prog Program) error {
	// Step 1: register the environment as Variable nodes.
	for name, tmpl := range prog.Environment {
		r.db.Insert(NewVariable(name, tmpl))
	}

	// Step 2: merge runners.
	if len(prog.Runners) > 0 {
		r.db.runners.Merge(prog.Runners)
	}

	// Step 3: index this file's templates by name (later files may add
	// more; a name already seen is left as-is so the first declaration
	// wins, matching the teacher's first-registration-wins convention
	// for duplicate names elsewhere in the pack).
	for name, tmpl := range prog.Templates {
		if _, dup := r.templates[name]; !dup {
			r.templates[name] = tmpl
		}
	}

	// Step 4: expand calls against the now-known templates; defer the rest.
	pending := make([]TaskDecl, 0, len(prog.Tasks))
	pending = append(pending, prog.Tasks...)
	for _, call := range prog.Calls {
		expanded, deferred, err := r.tryExpand(call)
		if err != nil {
			return err
		}
		if deferred {
			r.deferred = append(r.deferred, deferredCall{call: call})
			continue
		}
		pending = append(pending, expanded...)
	}

	// Steps 5-6: sort directly-resolvable tasks from placeholder-bearing
	// ones, then run one delayed-resolution pass over everything pending.
	if err := r.admitOrDelay(pending); err != nil {
		return err
	}
	if err := r.drainDelayed(); err != nil {
		return err
	}

	// Step 7: resolve includes, recursing under the same resolver state.
	for _, raw := range prog.Includes {
		if err := r.resolveInclude(raw); err != nil {
			return err
		}
	}

	return nil
}

// tryExpand attempts to expand call against the resolver's current
// template index. The second return value is true when call.Template is
// not yet known, meaning it should be deferred and retried later.
func (r *resolver) tryExpand(call TemplateCall) ([]TaskDecl, bool, error) {
	tmpl, ok := r.templates[call.Template]
	if !ok {
		return nil, true, nil
	}
	expanded, err := Expand(tmpl, call)
	if err != nil {
		return nil, false, err
	}
	return expanded, false, nil
}

// admitOrDelay implements spec §4.7 step 5: a task whose target-shaped
// fields (Creates, Requires, Name, Stdin, Stdout, Path — every field
// that becomes a Target identity) are placeholder-free is inserted
// immediately; otherwise it waits for its referenced variables.
func (r *resolver) admitOrDelay(decls []TaskDecl) error {
	for _, decl := range decls {
		if taskTargetPlaceholders(decl).empty() {
			if err := r.insertTask(decl); err != nil {
				return err
			}
			continue
		}
		r.delayed = append(r.delayed, delayedTask{decl: decl})
	}
	return nil
}

// insertTask builds and registers the runtime Task for decl.
func (r *resolver) insertTask(decl TaskDecl) error {
	t, err := NewTask(decl)
	if err != nil {
		return err
	}
	r.db.Insert(t)
	return nil
}

// placeholderSet is the set of placeholder identifiers referenced by a
// task's target-shaped fields.
type placeholderSet map[string]struct{}

func (s placeholderSet) empty() bool { return len(s) == 0 }

// taskTargetPlaceholders gathers every placeholder identifier appearing
// in decl's Creates, Requires, Name, Stdin, Stdout, and Path fields —
// the fields whose surface strings must become concrete Target
// identities (spec §4.7 step 5). Script, Runner, and Description are
// excluded: those are substituted lazily at task run time against the
// task's resolved var(...) requires (spec §4.4/§4.5), not at resolution
// time.
func taskTargetPlaceholders(decl TaskDecl) placeholderSet {
	out := placeholderSet{}
	add := func(s string) {
		for id := range GatherString(s) {
			out[id] = struct{}{}
		}
	}
	for _, s := range decl.Creates {
		add(s)
	}
	for _, s := range decl.Requires {
		add(s)
	}
	add(decl.Name)
	add(decl.Stdin)
	add(decl.Stdout)
	add(decl.Path)
	return out
}

// drainDelayed implements spec §4.7 step 6: repeatedly sweep the delayed
// list, resolving any task whose referenced variables are all already
// registered, until a sweep makes no progress. Tasks that remain are
// left for the next file's richer variable set, or for the final pass
// in finalize.
func (r *resolver) drainDelayed() error {
	for {
		progressed := false
		remaining := r.delayed[:0:0]

		for _, dt := range r.delayed {
			ready, env, err := r.resolveEnv(taskTargetPlaceholders(dt.decl))
			if err != nil {
				return err
			}
			if !ready {
				remaining = append(remaining, dt)
				continue
			}
			resolved := substituteTaskDecl(dt.decl, env)
			if err := r.insertTask(resolved); err != nil {
				return err
			}
			progressed = true
		}

		r.delayed = remaining
		if !progressed || len(r.delayed) == 0 {
			return nil
		}
	}
}

// resolveEnv reports whether every identifier in ids is already a
// registered Variable target, running each one (memoized at most once
// per session, per spec §4.3) and returning their resolved values.
func (r *resolver) resolveEnv(ids placeholderSet) (bool, map[string]string, error) {
	env := make(map[string]string, len(ids))
	for id := range ids {
		vt := VariableTarget{Name: id}
		if !r.db.Has(vt) {
			return false, nil, nil
		}
		res := r.db.Run(vt)
		if res.Err != nil {
			return false, nil, res.Err
		}
		env[id] = res.Value
	}
	return true, env, nil
}

// resolveInclude implements spec §4.7 step 7: substitute the include
// path against known variables, run its generating task if one is
// registered for that path, then load and recursively resolve it.
func (r *resolver) resolveInclude(raw string) error {
	ids := GatherString(raw)
	ready, env, err := r.resolveEnv(ids)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("%w: include path %q references an unresolved variable", ErrUser, raw)
	}
	path := SubstituteString(raw, env)
	pathTarget := FileTarget{Path: normalizePath(path)}

	if r.db.Has(pathTarget) {
		if res := r.db.Run(pathTarget); res.Err != nil {
			return fmt.Errorf("%w: generating %s: %v", ErrMissingInclude, path, res.Err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingInclude, path)
	}

	included, err := r.loader.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingInclude, path, err)
	}
	return r.resolveFile(included)
}

// finalize implements spec §4.7 steps 8-9: retry every deferred
// TemplateCall against the complete template index, then run a last
// delayed-resolution pass. Anything still unresolved is a genuine
// configuration error, not a transient ordering issue.
func (r *resolver) finalize() error {
	stillDeferred := make([]deferredCall, 0, len(r.deferred))
	var pending []TaskDecl

	for _, dc := range r.deferred {
		expanded, deferred, err := r.tryExpand(dc.call)
		if err != nil {
			return err
		}
		if deferred {
			stillDeferred = append(stillDeferred, dc)
			continue
		}
		pending = append(pending, expanded...)
	}

	if len(stillDeferred) > 0 {
		names := make([]string, 0, len(stillDeferred))
		for _, dc := range stillDeferred {
			names = append(names, dc.call.Template)
		}
		sort.Strings(names)
		return fmt.Errorf("%w: %v", ErrMissingTemplate, names)
	}

	if err := r.admitOrDelay(pending); err != nil {
		return err
	}
	if err := r.drainDelayed(); err != nil {
		return err
	}

	if len(r.delayed) > 0 {
		names := make([]string, 0, len(r.delayed))
		for _, dt := range r.delayed {
			names = append(names, describeDecl(dt.decl))
		}
		sort.Strings(names)
		return fmt.Errorf("%w: unresolvable target placeholders in: %v", ErrUser, names)
	}

	return nil
}

// describeDecl names a task declaration for error messages when no
// single target identifies it yet.
func describeDecl(decl TaskDecl) string {
	if decl.Name != "" {
		return "#" + decl.Name
	}
	if len(decl.Creates) > 0 {
		return decl.Creates[0]
	}
	return decl.Script
}
