package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.ngs.io/ncview/internal/adapter/store"
	"go.ngs.io/ncview/internal/domain"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print the variable roles and plot axes of a dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, _ := cmd.Flags().GetString("concat-dim")
			if !cmd.Flags().Changed("concat-dim") {
				dim = a.cfg.ConcatDim
			}
			ds, closer, err := store.OpenMulti(args, a.backend, dim)
			if err != nil {
				return err
			}
			defer closer.Close()
			return describe(cmd.OutOrStdout(), ds, a.log)
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().String("concat-dim", store.DefaultConcatDim, "dimension to join multiple files along")
	return cmd
}

// describe writes the dimension table, the variable roles and, for every
// data variable, its usable axes and geographic coordinates.
func describe(w io.Writer, ds domain.Dataset, log logrus.FieldLogger) error {
	roles, err := domain.ClassifyVars(ds)
	if err != nil {
		return err
	}

	dims := ds.Dims()
	names := make(domain.NameSet, len(dims))
	for n := range dims {
		names[n] = struct{}{}
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tSIZE")
	for _, n := range names.Sorted() {
		fmt.Fprintf(tw, "%s\t%d\n", n, dims[n])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\ncoordinates: %s\n", list(roles.Coords.Sorted()))
	fmt.Fprintf(w, "bounds: %s\n\n", list(roles.Bounds.Sorted()))

	data, err := domain.DataVariables(ds, 0)
	if err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tDIMS\tSHAPE\tUSABLE\tLAT\tLON")
	for _, name := range data {
		v, err := domain.DataVariable(ds, name)
		if err != nil {
			return err
		}
		lat := geo(domain.IdentifyLat(v))
		lon := geo(domain.IdentifyLon(v))
		if lat == "?" || lon == "?" {
			log.WithField("variable", name).Warn("ambiguous geographic coordinate")
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\t%s\n",
			name, list(v.Dims), v.Shape, list(domain.UsableDims(v)), lat, lon)
	}
	return tw.Flush()
}

// geo formats an identification result: "-" when absent, "?" when
// ambiguous.
func geo(name string, err error) string {
	var ambiguous *domain.AmbiguousAxisError
	switch {
	case errors.As(err, &ambiguous):
		return "?"
	case err != nil || name == "":
		return "-"
	}
	return name
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
