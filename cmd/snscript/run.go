package main

import (
	"github.com/spf13/cobra"

	"github.com/glycerine/snscript/snscript"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.sn> [arg]",
	Short: "Build and run a program's main",
	Long: `Build a program and call its main function, passing the optional
integer argument. The value main returns is printed unless it is null.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProgram,
}

func init() {
	runCmd.Flags().StringVar(&cfg.SavePath, "save", "", "save a run report to this file (never overwrites)")
	runCmd.Flags().BoolVar(&cfg.JSON, "json", false, "print a run report as JSON instead of the result")
}

func runProgram(cmd *cobra.Command, args []string) error {
	if _, err := snscript.RunFile(cfg, args[0], args[1:]); err != nil {
		return errReported
	}
	return nil
}
