package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocrud/nethost/host"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the manifest and check that the assembly exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost()
			if err != nil {
				return err
			}
			path, err := h.ManifestPath()
			if err != nil {
				return err
			}
			m, err := host.LoadManifest(path)
			if err != nil {
				return err
			}
			dir, err := h.WorkDir()
			if err != nil {
				return err
			}
			assembly := m.Resolve(dir)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manifest:  %s\n", path)
			fmt.Fprintf(out, "Assembly:  %s\n", assembly)
			fmt.Fprintf(out, "Type:      %s\n", m.TypeName)
			fmt.Fprintf(out, "Method:    %s\n", m.MethodName)
			fmt.Fprintf(out, "Arguments: %s\n", strings.Join(m.Arguments, " "))
			if m.DelegateTypeName != "" {
				fmt.Fprintf(out, "Delegate:  %s\n", m.DelegateTypeName)
			}

			if _, err := os.Stat(assembly); err != nil {
				return fmt.Errorf("%w: %s", host.ErrAssemblyNotFound, assembly)
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
