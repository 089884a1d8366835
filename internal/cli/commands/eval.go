package commands

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

func NewEvalCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var docArg, paramsArg string
	var asFilter bool
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate a GROQ expression against one document",
		Long: `Evaluate a GROQ expression against one document.

--doc and --params take inline JSON, @file, or - for stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := groq.ParseWithOptions(strings.Join(args, " "), parseOptions(g, false))
			if err != nil {
				return err
			}
			doc, err := cliutil.ReadDocument(docArg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			params, err := cliutil.ReadParams(paramsArg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ev := evaluator(g)
			var result any
			if asFilter {
				result, err = ev.EvalFilter(expr, doc, params)
			} else {
				result, err = ev.Eval(expr, doc, params)
			}
			if err != nil {
				return err
			}
			return printValue(cmd, result)
		},
	}
	cmd.Flags().StringVar(&docArg, "doc", "", "document JSON")
	cmd.Flags().StringVar(&paramsArg, "params", "", "parameters JSON object")
	cmd.Flags().BoolVar(&asFilter, "filter", false, "evaluate as a filter (prints true or false)")
	return cmd
}

func printValue(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
