package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glycerine/snscript/snscript"
)

var reportCmd = &cobra.Command{
	Use:   "report <file.report>",
	Short: "Print a saved run report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := snscript.LoadReport(args[0])
		if err != nil {
			return err
		}
		js, err := r.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", js)
		return nil
	},
}
