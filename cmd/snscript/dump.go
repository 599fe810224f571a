package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glycerine/snscript/snscript"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.sn>",
	Short: "Print the resolved expression tree and scope layout",
	Args:  cobra.ExactArgs(1),
	RunE:  dumpProgram,
}

func init() {
	dumpCmd.Flags().Bool("goon", false, "print the scope layout as Go syntax")
	dumpCmd.Flags().Bool("layout-json", false, "print the scope layout as JSON")
	dumpCmd.Flags().Bool("no-tree", false, "skip the expression tree")
}

func dumpProgram(cmd *cobra.Command, args []string) error {
	path := args[0]
	goonOut, err := cmd.Flags().GetBool("goon")
	if err != nil {
		return fmt.Errorf("failed to get goon flag: %w", err)
	}
	jsonOut, err := cmd.Flags().GetBool("layout-json")
	if err != nil {
		return fmt.Errorf("failed to get layout-json flag: %w", err)
	}
	noTree, err := cmd.Flags().GetBool("no-tree")
	if err != nil {
		return fmt.Errorf("failed to get no-tree flag: %w", err)
	}

	p, err := snscript.LoadProgram(cfg, path, cmd.OutOrStdout())
	if err == nil {
		err = p.Build()
	}
	if err != nil {
		snscript.ReportError(cfg, p, path, err)
		return errReported
	}

	out := cmd.OutOrStdout()
	if !noTree {
		if err := p.DumpTree(out); err != nil {
			return err
		}
	}
	switch {
	case goonOut:
		return p.DumpLayout(out)
	case jsonOut:
		js, err := snscript.GoToPrettyJson(p.Layout())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", js)
	default:
		for _, fn := range p.Functions() {
			fmt.Fprint(out, p.Scopes().Show(fn.Scope))
		}
	}
	return nil
}
