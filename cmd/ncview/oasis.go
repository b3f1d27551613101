package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.ngs.io/ncview/internal/adapter/oasis"
)

func newOasisCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oasis DUMP",
		Short: "Reshape an Oasis coupler dump onto its grid",
		Long: `oasis reads a flattened Oasis field dump together with grids.nc and
masks.nc from the run directory, lays every field out on the named grid
and either prints the result or, with --serve, serves it over HTTP.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, _ := cmd.Flags().GetString("grid")
			rundir, _ := cmd.Flags().GetString("rundir")
			serve, _ := cmd.Flags().GetBool("serve")
			a.portFlag(cmd)

			ds, err := oasis.Load(args[0], rundir, grid, a.backend)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"dump": args[0],
				"grid": grid,
			}).Info("dump reshaped")

			if serve {
				return a.serve(ds)
			}
			return describe(cmd.OutOrStdout(), ds, a.log)
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().String("grid", "", "Oasis grid name, e.g. torc")
	cmd.Flags().String("rundir", "", "directory holding grids.nc and masks.nc (default: the dump's directory)")
	cmd.Flags().Bool("serve", false, "serve the reshaped dataset instead of printing it")
	cmd.Flags().String("port", "", "port to listen on (overrides PORT)")
	_ = cmd.MarkFlagRequired("grid")
	return cmd
}
