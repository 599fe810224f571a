/*
The snscript command runs snscript programs and hosts its repl.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glycerine/snscript/snscript"
)

// errReported marks a failure whose diagnostic was already printed.
var errReported = errors.New("reported")

var cfg = snscript.NewConfig()

var rootCmd = &cobra.Command{
	Use:   "snscript [flags] [file.sn [arg]]",
	Short: "snscript interpreter",
	Long: `snscript runs programs written in a small lisp-like language.
With no file it starts an interactive repl.`,
	Args:              cobra.MaximumNArgs(2),
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if code := snscript.ReplMain(cfg, args); code != 0 {
			return errReported
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig merges the config file under the command line flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := cfg.LoadFile(cfg.ConfigFile, cmd.Flags()); err != nil {
		return err
	}
	return cfg.ValidateConfig()
}

func main() {
	rootCmd.Version = snscript.Version()

	cfg.DefineFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "snscript: %v\n", err)
		}
		os.Exit(1)
	}
}
