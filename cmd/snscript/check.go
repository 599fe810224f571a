package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glycerine/snscript/snscript"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.sn>...",
	Short: "Parse and build programs without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkPrograms,
}

func checkPrograms(cmd *cobra.Command, args []string) error {
	failed := false
	for _, path := range args {
		p, err := snscript.LoadProgram(cfg, path, cmd.OutOrStdout())
		if err == nil {
			err = p.Build()
		}
		if err != nil {
			snscript.ReportError(cfg, p, path, err)
			failed = true
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
		}
	}
	if failed {
		return errReported
	}
	return nil
}
