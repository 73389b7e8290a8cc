package commands

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var snapshotOutput string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [script...]",
	Short: "Print the registry as TOML",
	Long: `Run command scripts, then print every package with its nicknames, use
edges, shadowing symbols and symbol names as TOML.

Examples:
  lpkg snapshot packages.lisp
  lpkg snapshot -o registry.toml packages.lisp`,
	Run: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Write the snapshot to a file")
}

func runSnapshot(cmd *cobra.Command, args []string) {
	s, err := newSession(io.Discard)
	if err != nil {
		fail("Error", err)
	}
	if err := s.runFiles(args); err != nil {
		fail("Error", err)
	}

	data, err := toml.Marshal(s.reg.Snapshot())
	if err != nil {
		fail("Error encoding snapshot", err)
	}
	if snapshotOutput == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(snapshotOutput, data, 0o644); err != nil {
		fail("Error writing snapshot", err)
	}
}
