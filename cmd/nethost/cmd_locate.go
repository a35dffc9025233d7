package main

import (
	"fmt"

	"github.com/gocrud/nethost/host"
	"github.com/gocrud/nethost/hostfxr"
	"github.com/spf13/cobra"
)

func newLocateCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the hostfxr library that would be loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost()
			if err != nil {
				return err
			}

			// 清单可选，存在时程序集目录中的 hostfxr 优先
			assembly := ""
			if path, err := h.ManifestPath(); err == nil {
				if m, err := host.LoadManifest(path); err == nil {
					if dir, err := h.WorkDir(); err == nil {
						assembly = m.Resolve(dir)
					}
				}
			}
			opts := h.LocateOptions(assembly)

			out := cmd.OutOrStdout()
			if all {
				for _, c := range hostfxr.Roots(opts) {
					lib, ok := c.Library()
					if !ok {
						lib = "-"
					}
					fmt.Fprintf(out, "%-24s %s\t%s\n", c.Source, c.Root, lib)
				}
			}

			path, err := hostfxr.Locate(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also list every candidate install root")
	return cmd
}
