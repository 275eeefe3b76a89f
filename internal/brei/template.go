package brei

import "fmt"

// TemplateCall is a directive to expand a named template against
// argument values, possibly multiplexed over lists (spec §3/§4.6).
type TemplateCall struct {
	Template string
	Args     map[string]ArgValue
	Collect  string // "" if unset
	Join     JoinKind
}

// JoinKind selects the multiplexing strategy when any argument is a list.
type JoinKind int

const (
	// JoinInner zips all list-valued args pairwise by position (the
	// default, spec §6).
	JoinInner JoinKind = iota
	// JoinOuter takes the Cartesian product over all list-valued args.
	JoinOuter
)

// ArgValue is either a scalar string or a list of strings (spec §3).
type ArgValue struct {
	Scalar string
	List   []string
	IsList bool
}

// ScalarArg and ListArg are convenience constructors, primarily for tests.
func ScalarArg(s string) ArgValue  { return ArgValue{Scalar: s} }
func ListArg(ss []string) ArgValue { return ArgValue{List: ss, IsList: true} }

// Expand applies call against the given template body, producing one
// TaskDecl per expansion (spec §4.6). If call.Collect is set, an
// additional phony aggregator TaskDecl is appended whose Requires is the
// union of every produced expansion's Creates.
func Expand(tmpl TaskDecl, call TemplateCall) ([]TaskDecl, error) {
	envs, err := multiplex(call.Args, call.Join)
	if err != nil {
		return nil, err
	}

	tasks := make([]TaskDecl, 0, len(envs))
	for _, env := range envs {
		tasks = append(tasks, substituteTaskDecl(tmpl, env))
	}

	if call.Collect != "" {
		var allCreates []string
		for _, task := range tasks {
			allCreates = append(allCreates, task.Creates...)
			if task.Stdout != "" {
				allCreates = append(allCreates, task.Stdout)
			}
			if task.Name != "" {
				allCreates = append(allCreates, "#"+task.Name)
			}
		}
		tasks = append(tasks, TaskDecl{
			Name:     call.Collect,
			Requires: allCreates,
		})
	}

	return tasks, nil
}

// multiplex produces the ordered list of flat argument environments
// described by spec §4.6: all-scalar -> one expansion; join=inner -> zip
// by position, stopping at the shortest list (spec §9's adopted default);
// join=outer -> Cartesian product, scalars acting as singleton lists.
func multiplex(args map[string]ArgValue, join JoinKind) ([]map[string]string, error) {
	anyList := false
	for _, v := range args {
		if v.IsList {
			anyList = true
			break
		}
	}
	if !anyList {
		flat := make(map[string]string, len(args))
		for k, v := range args {
			flat[k] = v.Scalar
		}
		return []map[string]string{flat}, nil
	}

	if join == JoinOuter {
		return cartesian(args), nil
	}
	return zip(args), nil
}

// zip implements join=inner: scalars repeat at every position; list
// values are consumed in lockstep. The result length is the shortest
// declared list's length.
func zip(args map[string]ArgValue) []map[string]string {
	n := -1
	for _, v := range args {
		if v.IsList {
			if n == -1 || len(v.List) < n {
				n = len(v.List)
			}
		}
	}
	if n == -1 {
		n = 0
	}

	out := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		env := make(map[string]string, len(args))
		for k, v := range args {
			if v.IsList {
				env[k] = v.List[i]
			} else {
				env[k] = v.Scalar
			}
		}
		out = append(out, env)
	}
	return out
}

// cartesian implements join=outer: the Cartesian product over every
// list-valued arg, scalars acting as singletons.
func cartesian(args map[string]ArgValue) []map[string]string {
	keys := make([]string, 0, len(args))
	lists := make([][]string, 0, len(args))
	for k, v := range args {
		keys = append(keys, k)
		if v.IsList {
			lists = append(lists, v.List)
		} else {
			lists = append(lists, []string{v.Scalar})
		}
	}

	total := 1
	for _, l := range lists {
		total *= len(l)
	}

	out := make([]map[string]string, 0, total)
	indices := make([]int, len(lists))
	for n := 0; n < total; n++ {
		env := make(map[string]string, len(keys))
		for i, k := range keys {
			env[k] = lists[i][indices[i]]
		}
		out = append(out, env)

		for i := len(indices) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(lists[i]) {
				break
			}
			indices[i] = 0
		}
	}
	return out
}

// substituteTaskDecl substitutes every string field of a TaskDecl against
// env, per spec §4.1/§4.6.
func substituteTaskDecl(d TaskDecl, env map[string]string) TaskDecl {
	out := d
	out.Creates = substituteStrings(d.Creates, env)
	out.Requires = substituteStrings(d.Requires, env)
	out.Name = SubstituteString(d.Name, env)
	out.Runner = SubstituteString(d.Runner, env)
	out.Path = SubstituteString(d.Path, env)
	out.Script = SubstituteString(d.Script, env)
	out.Stdin = SubstituteString(d.Stdin, env)
	out.Stdout = SubstituteString(d.Stdout, env)
	out.Description = SubstituteString(d.Description, env)
	return out
}

func substituteStrings(ss []string, env map[string]string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = SubstituteString(s, env)
	}
	return out
}

// validateJoinLengths is available to callers that want to reject
// unequal-length lists under join=inner instead of the spec's default
// "stop at shortest" (spec §9 open question); brei's resolver does not
// call it by default.
func validateJoinLengths(args map[string]ArgValue) error {
	n := -1
	for k, v := range args {
		if !v.IsList {
			continue
		}
		if n == -1 {
			n = len(v.List)
			continue
		}
		if len(v.List) != n {
			return fmt.Errorf("%w: argument %q has length %d, expected %d", ErrUser, k, len(v.List), n)
		}
	}
	return nil
}
