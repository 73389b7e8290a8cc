package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [script...]",
	Short: "Verify registry invariants",
	Long: `Run command scripts without printing their results, then verify that
the registry is consistent: no name is both external and internal, every
symbol is present in its home package, use and used-by lists agree, the
keyword package holds only external symbols, and package names are unique.`,
	Run: runCheckCmd,
}

func runCheckCmd(cmd *cobra.Command, args []string) {
	s, err := newSession(io.Discard)
	if err != nil {
		fail("Error", err)
	}
	if err := s.runFiles(args); err != nil {
		fail("Error", err)
	}
	if err := s.reg.Check(); err != nil {
		fail("Invariant violation", err)
	}
	fmt.Printf("ok: %d packages\n", len(s.reg.ListAllPackages()))
}
