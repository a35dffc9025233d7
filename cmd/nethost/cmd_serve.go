package main

import (
	"github.com/gocrud/nethost"
	"github.com/gocrud/nethost/config"
	"github.com/gocrud/nethost/host"
	"github.com/gocrud/nethost/logging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the application as a hosted service until it exits or a signal arrives",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
}

func serve(cmd *cobra.Command, args []string) error {
	err := nethost.Run(
		nethost.UseLogging(factory),
		config.Use(cfgBuilder),
		nethost.UseHost(hostOptions...),
	)
	exitCode = host.ExitCode(err)
	if err != nil {
		logger.Error("nethost stopped with error", logging.Err(err))
	}
	return nil
}
