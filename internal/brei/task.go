package brei

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TaskDecl is the declarative shape shared by Task and Template bodies
// (spec §3: "Template is structurally identical to a Task but fields may
// contain placeholders"). Target-shaped fields (Creates, Requires, Stdin,
// Stdout) are surface strings here, parsed into Targets by NewTask once
// all placeholders have been substituted.
type TaskDecl struct {
	Creates     []string
	Requires    []string
	Name        string
	Runner      string
	Path        string
	Script      string
	Stdin       string
	Stdout      string
	Description string
	Force       bool
}

// Task is the runtime node for a unit of work (spec §3/§4.4).
type Task struct {
	creates_    []Target
	requires_   []Target
	phonyName   string // "" if the task has no name
	runnerName  string // "" selects direct-exec mode
	path        string // "" means the script is inline
	script      string
	stdin       Target // nil if absent
	stdout      Target // nil if absent
	description string
	force       bool
}

// NewTask validates decl against the invariants of spec §3 and builds the
// runtime Task. Target-shaped fields must already have had template
// substitution applied (the resolver's job, not this constructor's).
func NewTask(decl TaskDecl) (*Task, error) {
	// A task with neither script nor path does no work of its own; it is
	// accepted only when it requires something, as the phony aggregator
	// that a collecting TemplateCall produces (see Expand).
	if decl.Script == "" && decl.Path == "" && len(decl.Requires) == 0 {
		return nil, fmt.Errorf("%w: task must declare script or path", ErrConfig)
	}
	if decl.Script != "" && decl.Path != "" {
		return nil, fmt.Errorf("%w: task cannot declare both script and path", ErrConfig)
	}

	t := &Task{
		runnerName:  decl.Runner,
		path:        decl.Path,
		script:      decl.Script,
		description: decl.Description,
		force:       decl.Force,
		phonyName:   decl.Name,
	}

	creates := make([]Target, 0, len(decl.Creates)+1)
	seenCreates := map[Target]struct{}{}
	addCreate := func(s string) {
		tgt := ParseTarget(s)
		if _, dup := seenCreates[tgt]; dup {
			return
		}
		seenCreates[tgt] = struct{}{}
		creates = append(creates, tgt)
	}
	for _, s := range decl.Creates {
		addCreate(s)
	}
	if decl.Name != "" {
		addCreate("#" + decl.Name)
	}

	requires := make([]Target, 0, len(decl.Requires)+2)
	seenRequires := map[Target]struct{}{}
	addRequire := func(tgt Target) {
		if _, dup := seenRequires[tgt]; dup {
			return
		}
		seenRequires[tgt] = struct{}{}
		requires = append(requires, tgt)
	}
	for _, s := range decl.Requires {
		addRequire(ParseTarget(s))
	}

	if decl.Stdin != "" {
		t.stdin = ParseTarget(decl.Stdin)
		addRequire(t.stdin)
	}
	if decl.Stdout != "" {
		t.stdout = ParseTarget(decl.Stdout)
		if _, isPhony := t.stdout.(PhonyTarget); isPhony {
			return nil, fmt.Errorf("%w: stdout cannot target a phony name", ErrConfig)
		}
		addCreate(decl.Stdout)
	}
	if decl.Path != "" {
		pathTarget := ParseTarget(decl.Path)
		addRequire(pathTarget)
	}

	t.creates_ = creates
	t.requires_ = requires
	return t, nil
}

func (t *Task) creates() []Target  { return t.creates_ }
func (t *Task) requires() []Target { return t.requires_ }

// evaluate implements node: it resolves dependencies, decides freshness,
// executes (or skips), and performs the post-run achieved-goals check.
func (t *Task) evaluate(db *Database, chain []Target) Result {
	self := chain[len(chain)-1]

	depResults, err := db.runDependencies(self, t.requires_, chain)
	if err != nil {
		return Result{Err: err}
	}

	if !t.needsRun(db) {
		return Result{Skipped: true}
	}

	env := make(map[string]string, len(depResults))
	for tgt, res := range depResults {
		if vt, ok := tgt.(VariableTarget); ok {
			env[vt.Name] = res.Value
		}
	}
	script := SubstituteString(t.script, env)

	captured, err := t.execute(db, script)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %s: %v", ErrTaskFailed, self, err)}
	}

	if len(fileTargetsOf(t.creates_)) > 0 && t.isStaleByFiles() {
		return Result{Err: fmt.Errorf("%w: %s: didn't achieve goals", ErrTaskFailed, self)}
	}

	return Result{Value: captured}
}

// needsRun is the full freshness decision of spec §4.4, including the
// database-wide and per-task force overrides.
func (t *Task) needsRun(db *Database) bool {
	if db.force || t.force {
		return true
	}
	return t.isStaleByFiles()
}

// isStaleByFiles is the file-existence/timestamp half of the freshness
// decision, with no force override. It is reused, unmodified, as the
// post-run "did we actually achieve our goals" check — a task rerun for
// force alone is not thereby stale; only missing or backdated output is.
func (t *Task) isStaleByFiles() bool {
	targets := fileTargetsOf(t.creates_)
	if len(targets) == 0 {
		return true
	}
	for _, ft := range targets {
		if _, ok := fileMtime(ft.Path); !ok {
			return true
		}
	}

	var maxDep time.Time
	anyDep := false
	for _, r := range t.requires_ {
		if ft, ok := r.(FileTarget); ok {
			if m, ok2 := fileMtime(ft.Path); ok2 {
				if !anyDep || m.After(maxDep) {
					maxDep = m
					anyDep = true
				}
			}
		}
	}
	if !anyDep {
		return false
	}
	for _, ft := range targets {
		m, _ := fileMtime(ft.Path)
		if m.Before(maxDep) {
			return true
		}
	}
	return false
}

func fileTargetsOf(targets []Target) []FileTarget {
	var out []FileTarget
	for _, t := range targets {
		if ft, ok := t.(FileTarget); ok {
			out = append(out, ft)
		}
	}
	return out
}

func fileMtime(path string) (time.Time, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return fi.ModTime(), true
}

// execute runs the task's recipe and returns captured stdout (only
// non-empty when stdout targets a Variable). script is t.script with
// every resolved requires Variable already substituted in (spec §4.4/§4.5:
// a task's body may reference "${x}" for a var(x) it requires, resolved
// at run time against that dependency's memoized value, not at program
// resolution time).
func (t *Task) execute(db *Database, script string) (string, error) {
	if t.runnerName != "" {
		return t.executeRunnerMode(db, script)
	}
	return t.executeDirectMode(db, script)
}

// executeDirectMode implements spec §4.4's no-runner path: split the
// script on newlines, shell-word-split each non-empty line, and spawn it
// directly. Capturing stdout into a Variable requires a single-line
// script (spec §9's preserved asymmetry).
func (t *Task) executeDirectMode(db *Database, script string) (string, error) {
	lines := nonEmptyLines(script)
	_, captureStdout := t.stdout.(VariableTarget)

	if captureStdout && len(lines) != 1 {
		return "", fmt.Errorf("%w: capturing stdout without a runner requires a single-line script", ErrUser)
	}

	var stdoutFile *os.File
	if ft, ok := t.stdout.(FileTarget); ok {
		f, err := os.Create(ft.Path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		stdoutFile = f
	}

	var captured bytes.Buffer
	for _, line := range lines {
		argv := shellSplit(line)
		if len(argv) == 0 {
			continue
		}

		stdin, closeStdin, err := t.openStdin(db)
		if err != nil {
			return "", err
		}

		var stdoutWriter io.Writer
		switch {
		case captureStdout:
			stdoutWriter = &captured
		case stdoutFile != nil:
			stdoutWriter = stdoutFile
		default:
			stdoutWriter = os.Stdout
		}

		err = t.runOne(db, argv, stdin, stdoutWriter)
		if closeStdin != nil {
			closeStdin()
		}
		if err != nil {
			return "", err
		}
	}

	if captureStdout {
		return strings.TrimSpace(captured.String()), nil
	}
	return "", nil
}

// executeRunnerMode implements spec §4.4's named-runner path: materialize
// the script (or use Path directly), resolve "${script}" in the runner's
// args, and spawn once.
func (t *Task) executeRunnerMode(db *Database, script string) (string, error) {
	runner, err := db.runners.Lookup(t.runnerName)
	if err != nil {
		return "", err
	}

	scriptPath := t.path
	if scriptPath == "" {
		f, err := os.CreateTemp("", "brei-script-*")
		if err != nil {
			return "", err
		}
		defer os.Remove(f.Name())
		if _, err := f.WriteString(script); err != nil {
			f.Close()
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		scriptPath = f.Name()
	}

	argv := runner.Resolve(scriptPath)

	stdin, closeStdin, err := t.openStdin(db)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeStdin != nil {
			closeStdin()
		}
	}()

	_, captureStdout := t.stdout.(VariableTarget)
	var captured bytes.Buffer
	var stdoutWriter io.Writer = os.Stdout
	switch {
	case captureStdout:
		stdoutWriter = &captured
	default:
		if ft, ok := t.stdout.(FileTarget); ok {
			f, err := os.Create(ft.Path)
			if err != nil {
				return "", err
			}
			defer f.Close()
			stdoutWriter = f
		}
	}

	if err := t.runOne(db, argv, stdin, stdoutWriter); err != nil {
		return "", err
	}

	if captureStdout {
		return strings.TrimSpace(captured.String()), nil
	}
	return "", nil
}

// openStdin resolves the task's stdin source into a reader to hand the
// child process (spec §4.4): File -> open for reading, Variable -> an
// in-memory reader over its memoized UTF-8 value, absent -> nil (which
// os/exec connects to the null device).
func (t *Task) openStdin(db *Database) (io.Reader, func(), error) {
	switch src := t.stdin.(type) {
	case nil:
		return nil, nil, nil
	case FileTarget:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	case VariableTarget:
		res := db.Run(src)
		if res.Err != nil {
			return nil, nil, res.Err
		}
		return strings.NewReader(res.Value), nil, nil
	default:
		return nil, nil, nil
	}
}

// runOne spawns argv once, wiring stdin/stdout as given and piping
// stderr through to the parent's stderr (spec §4.4: "stderr of each line
// is logged"). It acquires the database's subprocess throttling slot
// around the actual spawn, never around dependency resolution.
func (t *Task) runOne(db *Database, argv []string, stdin io.Reader, stdout io.Writer) error {
	release := db.acquireSlot()
	defer release()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// nonEmptyLines splits a script on newlines and drops blank/whitespace-only
// lines (spec §4.4: "for each non-empty line").
func nonEmptyLines(script string) []string {
	var out []string
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// shellSplit performs a minimal shell-word split: whitespace-separated
// tokens, with single- and double-quoted runs treated as one token (no
// escape processing inside single quotes; backslash escapes the next
// character inside double quotes or unquoted). This is not a full shell
// grammar — no pack repo imports a shell-lexer library, so a small
// hand-written splitter is the grounded choice here (spec §4.4 only asks
// for "shell-word fashion", not full shell semantics).
func shellSplit(s string) []string {
	var out []string
	var cur strings.Builder
	has := false
	inSingle, inDouble := false, false

	flush := func() {
		if has {
			out = append(out, cur.String())
			cur.Reset()
			has = false
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			} else {
				cur.WriteByte(c)
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			} else if c == '\\' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			} else {
				cur.WriteByte(c)
			}
		case c == '\'':
			inSingle = true
			has = true
		case c == '"':
			inDouble = true
			has = true
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
			has = true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
			has = true
		}
	}
	flush()
	return out
}
