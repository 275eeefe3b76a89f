package main

import (
	"fmt"

	"brei/internal/brei"
)

// dryRunTargets prints, for each requested target, a static preview of
// what running it would do — without executing anything, and without
// re-deriving the freshness decision (that's Task.evaluate's job, and
// it isn't exported; this only reports declaration content via
// Database.Describe).
func dryRunTargets(db *brei.Database, targets []brei.Target) error {
	for _, t := range targets {
		detail, ok := db.Describe(t)
		if !ok {
			fmt.Printf("[dry-run] %s: no such target\n", t.String())
			continue
		}
		fmt.Printf("[dry-run] %s: %s\n", t.String(), detail)
	}
	return nil
}
