package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

func NewParseCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var formatFlag string
	var strict bool
	cmd := &cobra.Command{
		Use:   "parse QUERY",
		Short: "Parse a GROQ query and print its syntax tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cliutil.ParseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			expr, err := groq.ParseWithOptions(strings.Join(args, " "), parseOptions(g, strict))
			if err != nil {
				return err
			}
			return printExpr(cmd, expr, format)
		},
	}
	cmd.Flags().StringVar(&formatFlag, "format", "text", "tree format: text|json|yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject trailing input after the expression")
	return cmd
}

func printExpr(cmd *cobra.Command, expr groq.Expr, format cliutil.OutputFormat) error {
	out := cmd.OutOrStdout()
	switch format {
	case cliutil.FormatJSON:
		return cliutil.PrintJSON(out, groq.Tree(expr))
	case cliutil.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(groq.Tree(expr)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(out, groq.Format(expr))
		return err
	}
}

func parseOptions(g *cliopt.GlobalOptions, strict bool) groq.ParseOptions {
	opts := groq.ParseOptions{RequireEOF: strict}
	if cfg := g.Config(); cfg != nil {
		opts.MaxDepth = cfg.Query.MaxDepth
	}
	return opts
}

func evaluator(g *cliopt.GlobalOptions) *groq.Evaluator {
	var opts groq.EvalOptions
	if cfg := g.Config(); cfg != nil {
		opts.MaxDepth = cfg.Query.MaxDepth
	}
	return groq.NewEvaluator(opts)
}
