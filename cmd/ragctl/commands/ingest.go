package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/futig/mini-rag/internal/builder"
	"github.com/spf13/cobra"
)

type ingestResult struct {
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
}

func newIngestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <pattern>...",
		Short: "Ingest files matching glob patterns",
		Long: `Ingest every .txt, .md, .pdf and .docx file matched by the given patterns.
Patterns support ** for recursive matching; plain paths work too.

Examples:
  ragctl ingest report.pdf
  ragctl ingest "docs/**/*.{md,pdf}"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files match %s", strings.Join(args, " "))
			}

			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				results := make([]ingestResult, 0, len(files))
				for _, path := range files {
					n, err := core.Usecase.IngestFile(ctx, path)
					if err != nil {
						return fmt.Errorf("ingest %s: %w", path, err)
					}
					results = append(results, ingestResult{Filename: filepath.Base(path), ChunksAdded: n})
				}

				return c.print(out, results, func(w io.Writer) error {
					for _, r := range results {
						fmt.Fprintf(w, "%s\t%d chunks\n", r.Filename, r.ChunksAdded)
					}
					return nil
				})
			})
		},
	}
}

// expandPatterns resolves glob patterns into a sorted, de-duplicated list of regular files
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	slices.Sort(files)
	return files, nil
}
