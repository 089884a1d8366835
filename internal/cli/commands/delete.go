package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

func newDatasetDeleteCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			for _, id := range args {
				ok, err := ds.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "not found %s\n", id)
				}
			}
			return nil
		},
	}
}

func newDatasetDeleteWhereCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	var paramsArg string
	cmd := &cobra.Command{
		Use:   "delete-where FILTER",
		Short: "Delete every document matching a GROQ filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := cliutil.ReadParams(paramsArg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := ds.DeleteWhere(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&paramsArg, "params", "", "parameters JSON object")
	return cmd
}
