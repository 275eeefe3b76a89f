package main

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"brei/internal/brei"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Fuzzy-select a target from the resolved program and run it",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := brei.NewDatabase(brei.DefaultRunners(), flagForce, flagJobs)
		if err := loadProgram(flagFile, db); err != nil {
			return err
		}

		entries := db.List()
		if len(entries) == 0 {
			return fmt.Errorf("no targets registered")
		}

		idx, err := fuzzyfinder.Find(
			entries,
			func(i int) string { return entries[i].Target.String() },
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				if entries[i].Description == "" {
					return entries[i].Target.String()
				}
				return entries[i].Target.String() + "\n\n" + entries[i].Description
			}),
		)
		if err != nil {
			return fmt.Errorf("pick cancelled: %w", err)
		}

		target := entries[idx].Target
		if flagDryRun {
			return dryRunTargets(db, []brei.Target{target})
		}
		if res := db.Run(target); res.Err != nil {
			return res.Err
		}
		return nil
	},
}
