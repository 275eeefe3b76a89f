package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brei/internal/brei"
	"brei/internal/breifmt"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the parsed program file as YAML, before resolution",
	Long: "show loads the discovered program file and prints it back as\n" +
		"YAML — environment, tasks, template names, includes — without\n" +
		"following includes or expanding template calls. Template calls\n" +
		"and runner declarations are not printed. Useful for checking\n" +
		"that a TOML/JSON/[a.b.c]-subsection file was parsed the way you\n" +
		"expect before running targets with `brei <target ...>`.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := discoverProgramPath(flagFile)
		if err != nil {
			return err
		}
		loader := loaderFor(path)

		var prog brei.Program
		switch l := loader.(type) {
		case breifmt.TOMLLoader:
			prog, err = l.Load(path)
		case breifmt.JSONLoader:
			prog, err = l.Load(path)
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}

		out, err := breifmt.DumpProgram(prog)
		if err != nil {
			return fmt.Errorf("dumping %s: %w", path, err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}
