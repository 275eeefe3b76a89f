package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively scaffold a starter brei.toml",
	Long: "init asks a few questions and writes a starter brei.toml with\n" +
		"one concrete task, so `brei '#<name>'` works immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := appName + ".toml"

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		var taskName = "hello"
		var script = "echo hello world"
		var creates string

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Task name").
					Description("registered as a phony target (#name)").
					Value(&taskName),
				huh.NewInput().
					Title("Script").
					Description("run directly, one shell-word-split line at a time").
					Value(&script),
				huh.NewInput().
					Title("Output file this task creates (optional)").
					Value(&creates),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("init wizard: %w", err)
		}
		if taskName == "" {
			taskName = "hello"
		}
		if script == "" {
			script = "echo hello world"
		}

		content := renderStarterTOML(taskName, script, creates)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		fmt.Fprintf(os.Stderr, "run `brei '#%s'` to try it\n", taskName)
		return nil
	},
}

// renderStarterTOML builds a minimal, valid program file from the
// wizard's answers (spec §6's task-record schema).
func renderStarterTOML(name, script, creates string) string {
	out := "[[task]]\n"
	out += fmt.Sprintf("name = %q\n", name)
	if creates != "" {
		out += fmt.Sprintf("creates = [%q]\n", creates)
	}
	out += fmt.Sprintf("script = %q\n", script)
	return out
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing brei.toml")
}
