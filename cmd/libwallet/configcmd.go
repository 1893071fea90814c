package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libwallet-go/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the resolved configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration after flags and environment are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg
			if c.RPCPassword != "" {
				c.RPCPassword = "********"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "datadir     = %s\n", c.DataDir)
			fmt.Fprintf(out, "network     = %s\n", c.Network)
			fmt.Fprintf(out, "chain       = %s\n", c.Chain)
			fmt.Fprintf(out, "loglevel    = %s\n", c.LogLevel)
			fmt.Fprintf(out, "logfile     = %s\n", c.LogFile)
			fmt.Fprintf(out, "feerate     = %d\n", c.FeeRate)
			fmt.Fprintf(out, "rpcurl      = %s\n", c.RPCURL)
			fmt.Fprintf(out, "rpcuser     = %s\n", c.RPCUser)
			fmt.Fprintf(out, "rpcpassword = %s\n", c.RPCPassword)
			fmt.Fprintf(out, "kdftimeout  = %s\n", c.KDFTimeout)
			return nil
		},
	}

	write := &cobra.Command{
		Use:   "write",
		Short: "Write the resolved configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.ConfigPath(a.cfg.DataDir)
			}
			if err := config.SaveConfig(path, a.cfg); err != nil {
				return err
			}
			a.log.WithField("path", path).Info("config written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(show, write)
	return cmd
}
