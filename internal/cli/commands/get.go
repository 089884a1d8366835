package commands

import (
	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

func newDatasetGetCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			doc, err := ds.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), doc.Body)
		},
	}
}
