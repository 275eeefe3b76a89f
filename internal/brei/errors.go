package brei

import "errors"

// Error taxonomy (spec §7). Sentinel errors are wrapped with %w so callers
// can match via errors.Is while still getting a human-readable message.
var (
	// ErrMissing signals that a requested target has no node and no
	// corresponding file on disk.
	ErrMissing = errors.New("no such target")

	// ErrMissingInclude signals that an included program file does not exist.
	ErrMissingInclude = errors.New("missing include")

	// ErrMissingTemplate signals a TemplateCall naming an undeclared template.
	ErrMissingTemplate = errors.New("missing template")

	// ErrCyclicWorkflow signals a dependency cycle detected during run().
	ErrCyclicWorkflow = errors.New("cyclic workflow")

	// ErrTaskFailed signals a task ran but did not achieve its declared goals.
	ErrTaskFailed = errors.New("task failed")

	// ErrDependencyFailed signals that a node did not run because one or
	// more of its dependencies failed.
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrConfig signals that declared program data did not match the schema.
	ErrConfig = errors.New("config error")

	// ErrUser is a catch-all for user-facing mistakes not covered above,
	// e.g. unresolvable templated targets after exhaustive resolution passes.
	ErrUser = errors.New("user error")
)

// DependencyFailure aggregates the results of failed prerequisites of a
// node that therefore never ran itself.
type DependencyFailure struct {
	Target   Target
	Children map[Target]error
}

func (e *DependencyFailure) Error() string {
	msg := "target " + e.Target.String() + ": dependency failed:"
	for t, err := range e.Children {
		msg += " [" + t.String() + ": " + err.Error() + "]"
	}
	return msg
}

// Unwrap exposes ErrDependencyFailed together with every child failure, so
// errors.Is/errors.As reach a root cause (e.g. a *CycleError) through any
// number of nested dependency failures.
func (e *DependencyFailure) Unwrap() []error {
	errs := []error{ErrDependencyFailed}
	for _, err := range e.Children {
		errs = append(errs, err)
	}
	return errs
}

// CycleError names the chain of targets that formed a cycle.
type CycleError struct {
	Chain []Target
}

func (e *CycleError) Error() string {
	msg := "cycle detected:"
	for i, t := range e.Chain {
		if i > 0 {
			msg += " ->"
		}
		msg += " " + t.String()
	}
	return msg
}

func (e *CycleError) Unwrap() error { return ErrCyclicWorkflow }
