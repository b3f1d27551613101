package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.ngs.io/ncview/internal/adapter/store"
	"go.ngs.io/ncview/internal/config"
)

// app carries the settings resolved before a subcommand runs.
type app struct {
	cfg     config.Config
	backend store.Backend
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:   "ncview",
		Short: "Browse and plot CF-convention NetCDF datasets.",
		Long: `ncview classifies the variables of a NetCDF dataset, identifies
latitude and longitude coordinates, reconstructs cell edges from CF bounds
and serves 2D slices as JSON for a browser front end.

Settings come from an optional TOML file (--config), then the environment
variables PORT, NCVIEW_BACKEND, NCVIEW_CONCAT_DIM, CORS_ALLOWED_ORIGINS and
LOG_LEVEL, then command-line flags.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}
	addGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(a),
		newInspectCmd(a),
		newOasisCmd(a),
		newVersionCmd(),
	)
	return root
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a TOML configuration file")
	fs.String("backend", "", `file reader: "netcdf" (libnetcdf) or "cdf" (pure Go, classic format)`)
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(fs *pflag.FlagSet) error {
	path, _ := fs.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if fs.Changed("backend") {
		cfg.Backend, _ = fs.GetString("backend")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}

	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	a.log.SetLevel(lvl)

	backend, err := store.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.backend = backend
	a.log.WithFields(logrus.Fields{
		"backend":    backend,
		"concat_dim": cfg.ConcatDim,
	}).Debug("configuration loaded")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ncview version %s\n", version)
		},
		DisableAutoGenTag: true,
	}
}
