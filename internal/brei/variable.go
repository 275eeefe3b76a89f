package brei

// Variable is the runtime node for a lazily evaluated templated string
// (spec §3/§4.5). Its declared dependencies are exactly the placeholder
// identifiers referenced in its template, so by the time its thunk runs,
// every referenced Variable has already been resolved.
type Variable struct {
	name     string
	template string
	deps     []Target
}

// NewVariable builds a Variable node for name whose value is produced by
// substituting template against the other variables it references.
func NewVariable(name, template string) *Variable {
	ids := GatherString(template)
	deps := make([]Target, 0, len(ids))
	for id := range ids {
		deps = append(deps, VariableTarget{Name: id})
	}
	return &Variable{name: name, template: template, deps: deps}
}

func (v *Variable) creates() []Target  { return []Target{VariableTarget{Name: v.name}} }
func (v *Variable) requires() []Target { return v.deps }

// evaluate implements node: resolve every referenced variable, then
// substitute the template against their memoized string values.
func (v *Variable) evaluate(db *Database, chain []Target) Result {
	self := chain[len(chain)-1]

	results, err := db.runDependencies(self, v.deps, chain)
	if err != nil {
		return Result{Err: err}
	}

	env := make(map[string]string, len(results))
	for t, res := range results {
		if vt, ok := t.(VariableTarget); ok {
			env[vt.Name] = res.Value
		}
	}

	return Result{Value: SubstituteString(v.template, env)}
}
