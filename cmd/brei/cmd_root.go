package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brei/internal/brei"
)

var (
	flagFile   string
	flagJobs   int
	flagForce  bool
	flagDryRun bool
)

var rootCmd = &cobra.Command{
	Use:   appName + " [target ...]",
	Short: "A lazy, concurrent workflow engine",
	Long: "brei resolves a declarative program file into a goal-addressed\n" +
		"node database and runs the targets named on the command line,\n" +
		"skipping anything already up to date.\n\n" +
		"A target follows the grammar of spec §4.2: #NAME for a phony\n" +
		"goal, var(IDENT) for a variable, or any other string for a file path.",
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runTargets(args)
	},
}

// runTargets resolves the program file, then runs every named target,
// rendering a live progress view unless --dry-run was requested or
// stdout is not a terminal (falls back to plain logging).
func runTargets(args []string) error {
	db := brei.NewDatabase(brei.DefaultRunners(), flagForce, flagJobs)
	if err := loadProgram(flagFile, db); err != nil {
		return err
	}

	targets := make([]brei.Target, len(args))
	for i, a := range args {
		targets[i] = brei.ParseTarget(a)
	}

	if flagDryRun {
		return dryRunTargets(db, targets)
	}

	failed := false
	run := func() {
		for i, t := range targets {
			res := db.Run(t)
			if res.Err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "%s: %v\n", args[i], res.Err)
			}
		}
	}

	if progressSupported() {
		runWithProgress(db, run)
	} else {
		run()
	}

	if failed {
		return fmt.Errorf("one or more targets failed")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "explicit program file (overrides default discovery)")
	rootCmd.PersistentFlags().IntVarP(&flagJobs, "jobs", "j", 0, "max concurrent subprocess launches (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&flagForce, "force", false, "run every task regardless of its freshness check")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "print what would run without executing anything")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(showCmd)
}
