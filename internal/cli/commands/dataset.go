package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/contentlake"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

// datasetFlags are shared by every dataset subcommand.
type datasetFlags struct {
	name   string
	autoID bool
}

func NewDatasetCmd(g *cliopt.GlobalOptions) *cobra.Command {
	df := &datasetFlags{}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage and query stored documents",
	}
	cmd.PersistentFlags().StringVarP(&df.name, "dataset", "d", "", "dataset name (sqlite: file under --sqlite-path, or an explicit .db path)")
	cmd.PersistentFlags().BoolVar(&df.autoID, "auto-id", false, "generate _id for documents without one")
	_ = cmd.MarkPersistentFlagRequired("dataset")

	cmd.AddCommand(
		newDatasetCreateCmd(g, df),
		newDatasetPutCmd(g, df),
		newDatasetGetCmd(g, df),
		newDatasetDeleteCmd(g, df),
		newDatasetDeleteWhereCmd(g, df),
		newDatasetQueryCmd(g, df),
		newDatasetCountCmd(g, df),
		newDatasetStatsCmd(g, df),
		newDatasetSchemaCmd(g, df),
		newDatasetOptimizeCmd(g, df),
	)
	return cmd
}

func datasetOptions(g *cliopt.GlobalOptions, df *datasetFlags) (contentlake.Options, error) {
	cfg := g.Config()
	if cfg == nil {
		return contentlake.Options{}, errors.New("configuration not loaded")
	}
	opts, err := cliutil.DatasetOptions(cfg)
	if err != nil {
		return opts, err
	}
	opts.AutoID = df.autoID
	return opts, nil
}

func openDataset(ctx context.Context, g *cliopt.GlobalOptions, df *datasetFlags) (*contentlake.Dataset, error) {
	opts, err := datasetOptions(g, df)
	if err != nil {
		return nil, err
	}
	adapter, err := cliutil.NewAdapter(g.Config(), df.name)
	if err != nil {
		return nil, err
	}
	return contentlake.Open(ctx, adapter, opts)
}

func newDatasetCreateCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := datasetOptions(g, df)
			if err != nil {
				return err
			}
			adapter, err := cliutil.NewAdapter(g.Config(), df.name)
			if err != nil {
				return err
			}
			ds, err := contentlake.Create(ctx, adapter, df.name, opts)
			if err != nil {
				return err
			}
			defer ds.Close()

			if schemaPath != "" {
				b, err := os.ReadFile(schemaPath)
				if err != nil {
					return err
				}
				if err := ds.SetSchema(ctx, b); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", ds.Name(), adapter.DatasetID())
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file every document must satisfy")
	return cmd
}

func newDatasetCountCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()
			n, err := ds.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newDatasetSchemaCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	var setPath string
	var clearSchema bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show or replace the dataset's JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := openDataset(ctx, g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			switch {
			case clearSchema:
				return ds.SetSchema(ctx, nil)
			case setPath != "":
				src := "@" + setPath
				if setPath == "-" {
					src = setPath
				}
				b, err := cliutil.ReadInput(src, cmd.InOrStdin())
				if err != nil {
					return err
				}
				return ds.SetSchema(ctx, b)
			}

			schema := ds.Schema()
			if schema == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "no schema")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	}
	cmd.Flags().StringVar(&setPath, "set", "", "install the JSON Schema in this file (- for stdin)")
	cmd.Flags().BoolVar(&clearSchema, "clear", false, "remove the schema")
	return cmd
}

func newDatasetOptimizeCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run backend maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()
			if err := ds.Optimize(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "optimized")
			return nil
		},
	}
}

func newDatasetStatsCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count documents per _type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cliutil.ParseOutputFormat(g.Output)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			st, err := ds.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == cliutil.FormatJSON {
				return cliutil.PrintJSON(out, map[string]any{
					"total":          st.Total,
					"types":          st.Types,
					"firstCreatedAt": st.FirstCreatedMS,
					"lastUpdatedAt":  st.LastUpdatedMS,
				})
			}

			types := make([]string, 0, len(st.Types))
			for t := range st.Types {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(out, "%s\t%d\n", t, st.Types[t])
			}
			fmt.Fprintf(out, "total\t%d\n", st.Total)
			return nil
		},
	}
}
