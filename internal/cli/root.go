package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/internal/cli/commands"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/logger"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := cliopt.DefaultGlobalOptions()
	root := &cobra.Command{
		Use:           "contentlake",
		Short:         "GROQ document store",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			logger.Debug("configuration loaded", "backend", cfg.Backend, "config", g.ConfigFile)
			return nil
		},
	}
	cliopt.BindGlobalFlags(root.PersistentFlags(), &g)

	root.AddCommand(
		commands.NewTokenizeCmd(&g),
		commands.NewParseCmd(&g),
		commands.NewEvalCmd(&g),
		commands.NewDatasetCmd(&g),
		commands.NewREPLCmd(&g),
	)
	return root
}

// Execute runs the CLI and returns an exit code.
func Execute(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(argv)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// Main is Execute bound to the process's standard streams.
func Main() int {
	return Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
