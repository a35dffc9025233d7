package main

import (
	"fmt"

	"github.com/gocrud/nethost/host"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the application in the foreground (default)",
		Long: `Runs the assembly named by the manifest and waits for it to exit.

The process exit code is 0 when the application completes successfully and
-1 on any failure, including a non-zero exit from the application itself.
The application's own exit code is written to the log.`,
		Args: cobra.NoArgs,
		RunE: runForeground,
	}
}

func runForeground(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Test Application ===")
	fmt.Fprintln(out, "Calling library main function...")
	fmt.Fprintln(out)

	h, err := newHost()
	if err != nil {
		return err
	}
	err = h.Run(cmd.Context())
	exitCode = host.ExitCode(err)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Library main function returned: %d\n", exitCode)
	return nil
}
