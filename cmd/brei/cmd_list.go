package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"brei/internal/brei"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every target registered by the resolved program",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := brei.NewDatabase(brei.DefaultRunners(), false, 0)
		if err := loadProgram(flagFile, db); err != nil {
			return err
		}
		printTargets(db.List())
		return nil
	},
}

// printTargets prints every entry, sorted by target string and aligned
// so each node's description (if any) lines up in a second column.
func printTargets(entries []brei.TargetInfo) {
	if len(entries) == 0 {
		fmt.Println("no targets registered")
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Target.String() < entries[j].Target.String()
	})

	maxLen := 0
	for _, e := range entries {
		if n := len(e.Target.String()); n > maxLen {
			maxLen = n
		}
	}

	for _, e := range entries {
		if e.Description != "" {
			fmt.Printf("%-*s  %s\n", maxLen, e.Target.String(), e.Description)
		} else {
			fmt.Println(e.Target.String())
		}
	}
}
