package lib

import (
	"fmt"
	"os"
)

// Fatal prints err to stderr and exits the process with code. code
// should follow spec.md §6's exit-code taxonomy: 0 is reserved for full
// success and is never passed here; any non-zero code signals that at
// least one top-level target failed or the program could not be loaded.
func Fatal(err error, code int) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(code)
}
