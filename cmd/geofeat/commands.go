package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/viant/geofeat/cursor"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/featsync"
	"github.com/viant/geofeat/filter"
	"github.com/viant/geofeat/mapper"
	"github.com/viant/geofeat/query"
)

func (a *app) datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			names, err := ws.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) countCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <dataset>",
		Short: "Count features matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(cmd)
			if err != nil {
				return err
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			ds, err := a.open(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			n, err := ds.Count(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	addQueryFlags(cmd)
	return cmd
}

func (a *app) readCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <dataset>",
		Short: "Print features matching a query as GeoJSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(cmd)
			if err != nil {
				return err
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			ds, err := a.open(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			r, err := ds.Read(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for f, err := range cursor.All(r) {
				if err != nil {
					return err
				}
				data, err := mapper.MarshalGeoJSON(f)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%s\n", data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addQueryFlags(cmd)
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dataset> <file.geojson>",
		Short: "Load a GeoJSON FeatureCollection into a dataset, creating it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			features, err := readFeatureCollection(args[1])
			if err != nil {
				return err
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			ds, err := a.create(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			if err := ds.Insert(cmd.Context(), features...); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "imported %d features into %s", len(features), args[0])
			return nil
		},
	}
}

func (a *app) boundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds <dataset>",
		Short: "Print the envelope of a dataset as minx,miny,maxx,maxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			ds, err := a.open(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			b, err := ds.Bounds(cmd.Context())
			if err != nil {
				return err
			}
			if b.Min.X() > b.Max.X() {
				printWarning(cmd.ErrOrStderr(), "%s has no geometry", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g,%g,%g,%g %s\n", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y(), ds.CRS())
			return nil
		},
	}
}

func (a *app) changesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes <dataset>",
		Short: "Print change-log entries of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			since, _ := cmd.Flags().GetInt64("since")
			limit, _ := cmd.Flags().GetInt("limit")
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			entries, err := featsync.Changes(cmd.Context(), ws.DB(), args[0], since, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", e.SCN, e.Op, e.FeatureID)
			}
			return nil
		},
	}
	cmd.Flags().Int64("since", 0, "only entries with a greater SCN")
	cmd.Flags().Int("limit", 0, "maximum number of entries (0 for all)")
	return cmd
}

func (a *app) rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild <dataset>",
		Short: "Recompute and persist the envelope of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			ds, err := a.open(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			n, err := ds.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "reindexed:%d", n)
			return nil
		},
	}
}

func (a *app) dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <dataset>",
		Short: "Delete a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			defer ws.Close()
			if err := ws.Drop(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "dropped %s", args[0])
			return nil
		},
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("bbox", "", "bounds as minx,miny,maxx,maxy")
	cmd.Flags().String("filter", "", `CEL predicate, e.g. 'properties.kind == "road"'`)
	cmd.Flags().Int("offset", -1, "records to skip")
	cmd.Flags().Int("limit", -1, "maximum records")
}

// buildQuery translates query flags. Unset offset and limit flags leave the
// clause absent.
func buildQuery(cmd *cobra.Command) (query.Query, error) {
	var opts []query.Option
	flags := cmd.Flags()
	if bbox, _ := flags.GetString("bbox"); bbox != "" {
		b, err := parseBBox(bbox)
		if err != nil {
			return query.Query{}, err
		}
		opts = append(opts, query.WithBounds(b))
	}
	if expr, _ := flags.GetString("filter"); expr != "" {
		flt, err := filter.Compile(expr)
		if err != nil {
			return query.Query{}, inputErrorf("%v", err)
		}
		opts = append(opts, query.WithFilter(flt))
	}
	if flags.Changed("offset") {
		n, _ := flags.GetInt("offset")
		opts = append(opts, query.WithOffset(n))
	}
	if flags.Changed("limit") {
		n, _ := flags.GetInt("limit")
		opts = append(opts, query.WithLimit(n))
	}
	q := query.New(opts...)
	return q, q.Validate()
}

func parseBBox(value string) (orb.Bound, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return orb.Bound{}, inputErrorf("bbox %q: expected minx,miny,maxx,maxy", value)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, inputErrorf("bbox %q: %v", value, err)
		}
		v[i] = f
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func readFeatureCollection(path string) ([]*feature.Feature, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, inputErrorf("%s: %v", path, err)
	}
	out := make([]*feature.Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		id := featureID(gf.ID)
		if id == "" {
			id = uuid.NewString()
		}
		f := feature.New(id, gf.Geometry)
		for k, v := range gf.Properties {
			f.Put(k, v)
		}
		out = append(out, f)
	}
	return out, nil
}

func featureID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(id)
}
