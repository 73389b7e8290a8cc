// Package commands provides the CLI commands for the lpkg tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "lpkg",
	Short: "Lisp package registry driver",
	Long: `lpkg drives a Lisp package registry with command scripts.

A script is a sequence of forms such as
  (make-package "APP" :nicknames ("A") :use ("LISP"))
  (export app::main "APP")

Usage:
  lpkg run script.lisp         Run scripts and print each result
  lpkg repl                    Evaluate forms interactively
  lpkg graph script.lisp       Print the use graph after running scripts
  lpkg check script.lisp       Verify registry invariants after running scripts
  lpkg snapshot script.lisp    Print the registry as TOML
  lpkg version                 Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to an lpkg.toml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
}
