package brei

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Result is what a node's evaluation produces: a value (meaningful only
// for Variable nodes, whose captured stdout becomes their memoized
// string) and/or an error. Skipped records whether a Task decided it was
// already up to date, purely for progress reporting (Event.Phase).
type Result struct {
	Value   string
	Err     error
	Skipped bool
}

// node is the internal, unexported evaluation contract implemented by
// Task and Variable. It is intentionally unexported: callers build nodes
// via NewTask/NewVariable and register them with Insert.
type node interface {
	creates() []Target
	requires() []Target
	evaluate(db *Database, chain []Target) Result
}

// entry is the per-node lock + memoization cell described in spec §4.3:
// the first caller to acquire mu inspects the memo; if unset, it
// evaluates the node's thunk, sets the memo, then releases. Other
// callers, once admitted, observe the memo and return immediately.
type entry struct {
	mu     sync.Mutex
	done   bool
	result Result
	node   node
}

// Database is the goal-addressed node database (spec §4.3). It is
// append-mostly during program resolution and read-only during Run,
// except for the lazy synthesis of on-demand file nodes (also spec §4.3).
type Database struct {
	mu      sync.Mutex
	entries map[Target]*entry
	runners *RunnerTable
	force   bool
	sem     chan struct{} // nil = unlimited concurrent subprocess launches
	bus     eventBus
}

// NewDatabase returns an empty Database. jobs <= 0 means unlimited
// concurrent subprocess launches; force, if true, makes every task run
// regardless of its freshness decision (still memoized at most once).
func NewDatabase(runners *RunnerTable, force bool, jobs int) *Database {
	var sem chan struct{}
	if jobs > 0 {
		sem = make(chan struct{}, jobs)
	}
	return &Database{
		entries: make(map[Target]*entry),
		runners: runners,
		force:   force,
		sem:     sem,
	}
}

// Subscribe registers ch to receive lifecycle events for every node this
// database evaluates. See events.go; purely additive.
func (db *Database) Subscribe(ch chan<- Event) {
	db.bus.Subscribe(ch)
}

// Insert registers n under each of its declared creates() targets.
func (db *Database) Insert(n node) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, t := range n.creates() {
		db.entries[t] = &entry{node: n}
	}
}

// Has reports whether target is already registered (used by the resolver
// to decide whether a generated include file was produced by a task that
// must run first, spec §4.7 step 7).
func (db *Database) Has(t Target) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.entries[t]
	return ok
}

// TargetInfo describes one node registered in a Database, for CLI
// listing and interactive target selection. Description is only
// populated for Task nodes declaring one; every other node (Variable,
// a synthesized pre-existing file) reports an empty Description.
type TargetInfo struct {
	Target      Target
	Description string
}

// List returns every node currently registered in db. Order is
// unspecified; callers sort for display. Used by the CLI's `list`,
// `pick`, and `shell` commands — never by core resolution or Run.
func (db *Database) List() []TargetInfo {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]TargetInfo, 0, len(db.entries))
	for t, e := range db.entries {
		info := TargetInfo{Target: t}
		if task, ok := e.node.(*Task); ok {
			info.Description = task.description
		}
		out = append(out, info)
	}
	return out
}

// Describe returns a static, human-readable summary of what Run would do
// for target, without executing anything or evaluating freshness — the
// preview behind the CLI's --dry-run flag. ok is false if target is not
// registered.
func (db *Database) Describe(t Target) (detail string, ok bool) {
	db.mu.Lock()
	e, ok := db.entries[t]
	db.mu.Unlock()
	if !ok {
		return "", false
	}
	switch n := e.node.(type) {
	case *Task:
		if n.runnerName != "" {
			return fmt.Sprintf("runner=%s script=%q", n.runnerName, n.script), true
		}
		return fmt.Sprintf("direct-exec script=%q", n.script), true
	case *Variable:
		return fmt.Sprintf("variable template=%q", n.template), true
	case staticFileNode:
		return "pre-existing file on disk", true
	default:
		return "unknown node", true
	}
}

// Run evaluates the node owning target, blocking until the result is
// memoized, and returns it. Concurrent callers share the same evaluation
// (spec §4.3). This is the top-level entry point; internally it starts an
// empty cycle-detection chain.
func (db *Database) Run(target Target) Result {
	return db.run(target, nil)
}

// run is the internal recursive entry point carrying the in-flight chain
// used for cycle detection (spec §4.3: "per-call-chain, not global").
func (db *Database) run(target Target, chain []Target) Result {
	for _, c := range chain {
		if TargetEqual(c, target) {
			return Result{Err: &CycleError{Chain: appendChain(chain, target)}}
		}
	}

	e, err := db.lookupOrSynthesize(target)
	if err != nil {
		return Result{Err: err}
	}

	e.mu.Lock()
	if e.done {
		res := e.result
		e.mu.Unlock()
		return res
	}

	db.bus.publish(Event{Target: target, Phase: PhaseStart})
	res := e.node.evaluate(db, appendChain(chain, target))
	e.result = res
	e.done = true
	e.mu.Unlock()

	switch {
	case res.Err != nil:
		db.bus.publish(Event{Target: target, Phase: PhaseFailed, Err: res.Err})
	case res.Skipped:
		db.bus.publish(Event{Target: target, Phase: PhaseSkip})
	default:
		db.bus.publish(Event{Target: target, Phase: PhaseDone})
	}
	return res
}

// lookupOrSynthesize finds the entry for target, or — if target is a File
// that already exists on disk — synthesizes a no-op node satisfying it
// (spec §4.3). Otherwise it signals ErrMissing.
func (db *Database) lookupOrSynthesize(target Target) (*entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if e, ok := db.entries[target]; ok {
		return e, nil
	}

	ft, isFile := target.(FileTarget)
	if isFile {
		if _, statErr := os.Stat(ft.Path); statErr == nil {
			e := &entry{node: staticFileNode{target: ft}}
			db.entries[target] = e
			return e, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMissing, target.String())
}

// staticFileNode satisfies a pre-existing file target: it never "runs"
// but memoizes an immediate success, so dependents can proceed.
type staticFileNode struct {
	target FileTarget
}

func (n staticFileNode) creates() []Target  { return []Target{n.target} }
func (n staticFileNode) requires() []Target { return nil }
func (n staticFileNode) evaluate(*Database, []Target) Result {
	return Result{Skipped: true}
}

// appendChain returns a new slice with t appended, without mutating chain —
// required because dependency fan-out calls this concurrently per branch
// (mirrors dsl/expand.go's withType helper).
func appendChain(chain []Target, t Target) []Target {
	out := make([]Target, len(chain)+1)
	copy(out, chain)
	out[len(chain)] = t
	return out
}

// runDependencies evaluates every target in requires, in parallel,
// unthrottled (spec §4.3/§5: dependency traversal is never subject to the
// subprocess semaphore). It returns the per-target results and an
// aggregate error (a *DependencyFailure) if any failed.
func (db *Database) runDependencies(self Target, requires []Target, chain []Target) (map[Target]Result, error) {
	results := make(map[Target]Result, len(requires))
	var mu sync.Mutex

	var g errgroup.Group
	for _, r := range requires {
		r := r
		g.Go(func() error {
			res := db.run(r, chain)
			mu.Lock()
			results[r] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // node goroutines never return an error themselves

	failed := map[Target]error{}
	for t, res := range results {
		if res.Err != nil {
			failed[t] = res.Err
		}
	}
	if len(failed) > 0 {
		return results, &DependencyFailure{Target: self, Children: failed}
	}
	return results, nil
}

// acquireSlot blocks until a subprocess launch slot is available (if the
// database is throttled) and returns the release function.
func (db *Database) acquireSlot() func() {
	if db.sem == nil {
		return func() {}
	}
	db.sem <- struct{}{}
	return func() { <-db.sem }
}
