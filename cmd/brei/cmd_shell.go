package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"brei/internal/brei"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Resolve the program once and run goals interactively",
	Long: "shell resolves the program file a single time and keeps the\n" +
		"resulting node database warm across every goal typed at the\n" +
		"prompt — a visible demonstration that a goal already run in\n" +
		"this session is never re-evaluated (spec's memoization invariant).",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := brei.NewDatabase(brei.DefaultRunners(), flagForce, flagJobs)
		if err := loadProgram(flagFile, db); err != nil {
			return err
		}
		return runShell(db)
	},
}

func runShell(db *brei.Database) error {
	rl, err := readline.New(appName + "> ")
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "list":
			printTargets(db.List())
			continue
		}

		res := db.Run(brei.ParseTarget(line))
		switch {
		case res.Err != nil:
			fmt.Println("error:", res.Err)
		case res.Skipped:
			fmt.Println("(already up to date)")
		default:
			fmt.Println("ok")
		}
	}
}
