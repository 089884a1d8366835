package commands

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contentlake/contentlake/contentlake"
	"github.com/contentlake/contentlake/contentlake/grant"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

type pageView struct {
	Documents    []map[string]any `json:"documents"`
	NextCursor   string           `json:"nextCursor,omitempty"`
	HasMore      bool             `json:"hasMore"`
	Scanned      int              `json:"scanned"`
	ExplainSQL   string           `json:"explainSql,omitempty"`
	ExplainSteps []string         `json:"explainSteps,omitempty"`
}

func newDatasetQueryCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	var (
		paramsArg, after, cursorMode string
		grantsPath, grantParamsArg   string
		limit                        int
		explain                      bool
	)
	cmd := &cobra.Command{
		Use:   "query FILTER",
		Short: "List documents matching a GROQ filter, in _id order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cliutil.ParseOutputFormat(g.Output)
			if err != nil {
				return err
			}
			params, err := cliutil.ReadParams(paramsArg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			qopts := contentlake.QueryOptions{
				Limit:      limit,
				After:      after,
				CursorMode: contentlake.CursorMode(cursorMode),
				Explain:    explain,
			}
			if grantsPath != "" {
				if qopts.Grants, err = loadGrants(grantsPath); err != nil {
					return err
				}
				if qopts.GrantParams, err = cliutil.ReadParams(grantParamsArg, cmd.InOrStdin()); err != nil {
					return err
				}
			}

			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			page, err := ds.Query(cmd.Context(), args[0], params, qopts)
			if err != nil {
				return err
			}
			return printPage(cmd, page, format)
		},
	}
	cmd.Flags().StringVar(&paramsArg, "params", "", "parameters JSON object")
	cmd.Flags().IntVarP(&limit, "limit", "n", contentlake.DefaultQueryLimit, "page size")
	cmd.Flags().StringVar(&after, "after", "", "cursor from a previous page")
	cmd.Flags().StringVar(&cursorMode, "cursor", string(contentlake.CursorShort), "cursor style: short|full")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the SQL prefilter plan")
	cmd.Flags().StringVar(&grantsPath, "grants", "", "YAML or JSON file of grants restricting visible documents")
	cmd.Flags().StringVar(&grantParamsArg, "grant-params", "", "parameters JSON object for grant filters")
	return cmd
}

// loadGrants reads a list of grants. JSON input is accepted as YAML.
func loadGrants(path string) ([]grant.Grant, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var grants []grant.Grant
	if err := yaml.Unmarshal(b, &grants); err != nil {
		return nil, fmt.Errorf("grants %s: %w", path, err)
	}
	if grants == nil {
		grants = []grant.Grant{}
	}
	return grants, nil
}

func printPage(cmd *cobra.Command, page contentlake.Page, format cliutil.OutputFormat) error {
	out := cmd.OutOrStdout()
	if format == cliutil.FormatJSON {
		view := pageView{
			Documents:    make([]map[string]any, 0, len(page.Documents)),
			NextCursor:   page.NextCursor,
			HasMore:      page.HasMore,
			Scanned:      page.Scanned,
			ExplainSQL:   page.ExplainSQL,
			ExplainSteps: page.ExplainSteps,
		}
		for _, d := range page.Documents {
			view.Documents = append(view.Documents, d.Body)
		}
		return cliutil.PrintJSON(out, view)
	}

	errOut := cmd.ErrOrStderr()
	for _, step := range page.ExplainSteps {
		fmt.Fprintf(errOut, "plan: %s\n", step)
	}
	if page.ExplainSQL != "" {
		fmt.Fprintf(errOut, "sql: %s\n", page.ExplainSQL)
	}
	for _, d := range page.Documents {
		line := d.JSON
		if len(line) == 0 {
			var err error
			if line, err = json.Marshal(d.Body); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, string(line))
	}
	if page.HasMore {
		fmt.Fprintf(errOut, "more results: --after %s\n", page.NextCursor)
	}
	return nil
}
