package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

type tokenView struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func NewTokenizeCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize QUERY",
		Short: "Print the tokens of a GROQ query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cliutil.ParseOutputFormat(g.Output)
			if err != nil {
				return err
			}
			tokens, err := groq.Tokenize(strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == cliutil.FormatJSON {
				views := make([]tokenView, len(tokens))
				for i, tok := range tokens {
					views[i] = tokenView{Kind: tok.Kind.String(), Text: tok.Token.String(), Start: tok.Span.Start, End: tok.Span.End}
				}
				return cliutil.PrintJSON(out, views)
			}
			for _, tok := range tokens {
				fmt.Fprintf(out, "%d:%d\t%s\t%s\n", tok.Span.Start, tok.Span.End, tok.Kind, tok.Token)
			}
			return nil
		},
	}
}
