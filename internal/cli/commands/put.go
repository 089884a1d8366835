package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/contentlake"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
)

func newDatasetPutCmd(g *cliopt.GlobalOptions, df *datasetFlags) *cobra.Command {
	var importPath, mode, ifRevision string
	cmd := &cobra.Command{
		Use:   "put [DOC]",
		Short: "Write a document, or import JSON lines",
		Long: `Write a document given as inline JSON, @file, or - for stdin.

With --import, every non-empty line of the file (- for stdin) is a document
and all of them are written in one transaction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			putMode, err := parsePutMode(mode)
			if err != nil {
				return err
			}
			opts := contentlake.PutOptions{Mode: putMode, IfRevision: ifRevision}

			if importPath == "" && len(args) == 0 {
				return fmt.Errorf("provide a document or --import")
			}

			ds, err := openDataset(cmd.Context(), g, df)
			if err != nil {
				return err
			}
			defer ds.Close()

			if importPath != "" {
				r := cmd.InOrStdin()
				if importPath != "-" {
					f, err := os.Open(importPath)
					if err != nil {
						return err
					}
					defer f.Close()
					r = f
				}
				count, err := importLines(cmd, ds, r, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d\n", count)
				return nil
			}

			b, err := cliutil.ReadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := ds.PutJSON(cmd.Context(), b, opts)
			if err != nil {
				return err
			}
			status := "replaced"
			switch {
			case res.Skipped:
				status = "skipped"
			case res.Created:
				status = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s rev=%s\n", status, res.ID, res.Rev)
			return nil
		},
	}
	cmd.Flags().StringVar(&importPath, "import", "", "import a JSON lines file (- for stdin)")
	cmd.Flags().StringVar(&mode, "mode", string(contentlake.PutUpsert), "upsert|create|replace|createIfNotExists")
	cmd.Flags().StringVar(&ifRevision, "if-revision", "", "only write if the stored _rev matches")
	return cmd
}

func importLines(cmd *cobra.Command, ds *contentlake.Dataset, r io.Reader, opts contentlake.PutOptions) (int, error) {
	batch := contentlake.NewBatch()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := batch.PutJSON(bytes.Clone(line), opts); err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return ds.Batch(cmd.Context(), batch)
}

func parsePutMode(s string) (contentlake.PutMode, error) {
	switch m := contentlake.PutMode(s); m {
	case "", contentlake.PutUpsert:
		return contentlake.PutUpsert, nil
	case contentlake.PutCreate, contentlake.PutReplace, contentlake.PutCreateIfNotExists:
		return m, nil
	default:
		return "", fmt.Errorf("unknown put mode %q", s)
	}
}
