package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	runCheck    bool
	runParallel bool
)

var runCmd = &cobra.Command{
	Use:   "run [script...]",
	Short: "Run command scripts",
	Long: `Run command scripts against a fresh registry and print the result of
each form. Use "-" to read a script from standard input.

Examples:
  lpkg run packages.lisp
  lpkg run --check base.lisp app.lisp
  lpkg run --parallel a.lisp b.lisp`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runCheck, "check", false, "Verify registry invariants after the scripts")
	runCmd.Flags().BoolVarP(&runParallel, "parallel", "p", false, "Run the scripts concurrently against one registry")
}

func runRun(cmd *cobra.Command, args []string) {
	s, err := newSession(os.Stdout)
	if err != nil {
		fail("Error", err)
	}
	run := s.runFiles
	if runParallel {
		run = s.runParallel
	}
	if err := run(args); err != nil {
		fail("Error", err)
	}
	if runCheck {
		if err := s.reg.Check(); err != nil {
			fail("Invariant violation", err)
		}
	}
}
