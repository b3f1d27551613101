package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.ngs.io/ncview/internal/adapter/store"
	"go.ngs.io/ncview/internal/domain"
	httpHandler "go.ngs.io/ncview/internal/http"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve FILE...",
		Short: "Serve a dataset over HTTP",
		Long: `serve opens one or more files and starts the JSON API. Several
files are joined along the concatenation dimension (NCVIEW_CONCAT_DIM,
default "time") in the order given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.portFlag(cmd)
			dim, _ := cmd.Flags().GetString("concat-dim")
			if !cmd.Flags().Changed("concat-dim") {
				dim = a.cfg.ConcatDim
			}
			ds, closer, err := store.OpenMulti(args, a.backend, dim)
			if err != nil {
				return err
			}
			defer closer.Close()
			return a.serve(ds)
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().String("concat-dim", store.DefaultConcatDim, "dimension to join multiple files along")
	cmd.Flags().String("port", "", "port to listen on (overrides PORT)")
	return cmd
}

// portFlag applies --port when given.
func (a *app) portFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("port") {
		a.cfg.Port, _ = cmd.Flags().GetString("port")
	}
}

// serve blocks running the HTTP server over ds.
func (a *app) serve(ds domain.Dataset) error {
	router := httpHandler.SetupRouter(ds, a.cfg.AllowedOrigins, a.log)

	addr := a.cfg.Addr()
	a.log.WithFields(logrus.Fields{
		"addr":      addr,
		"variables": len(ds.Variables()),
	}).Info("server listening")
	a.log.Infof("Health check: http://localhost%s/health", addr)

	return router.Run(addr)
}
