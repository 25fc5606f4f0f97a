package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/futig/mini-rag/internal/builder"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/usecase/rag"
	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in RAG explainer texts",
		Long:  `Store two short texts about retrieval-augmented generation under the source "` + rag.SeedSource + `".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				n, err := core.Usecase.Seed(ctx)
				if err != nil {
					return err
				}
				res := ingestResult{Filename: rag.SeedSource, ChunksAdded: n}
				return c.print(out, res, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "seeded %d points under %q\n", n, rag.SeedSource)
					return err
				})
			})
		},
	}
}

func newQueryCmd(c *cli) *cobra.Command {
	var (
		source  string
		history []string
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question over the stored documents",
		Long: `Ask a question. With --source the search is restricted to one document, and a question
containing a summary phrase ("summarize", "overview", ...) returns the document summary instead.

Examples:
  ragctl query "what is rag?"
  ragctl query --source report.pdf "give an overview"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &entity.QueryRequest{
				Query:   strings.Join(args, " "),
				Source:  source,
				History: history,
			}

			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				outcome, err := core.Usecase.AnswerQuery(ctx, req)
				if err != nil {
					return err
				}

				if outcome.Route == entity.RouteSummarize {
					return c.print(out, outcome.Summary, func(w io.Writer) error {
						return printSummary(w, outcome.Summary)
					})
				}

				return c.print(out, outcome.Answer, func(w io.Writer) error {
					fmt.Fprintf(w, "%s\n", outcome.Answer.FinalAnswer)
					if len(outcome.Answer.TopContexts) > 0 {
						fmt.Fprintln(w, "\nsources:")
					}
					for _, p := range outcome.Answer.TopContexts {
						fmt.Fprintf(w, "  %s #%d\n", p.Source, p.ChunkID)
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Restrict retrieval to one source")
	cmd.Flags().StringArrayVar(&history, "history", nil, "Previous conversation turn (repeatable)")

	return cmd
}

func newSummaryCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary <source>",
		Short: "Summarize one stored document",
		Long: `Summarize one stored document. With --export the summary is rendered as markdown, pdf or docx
and written to stdout.

Examples:
  ragctl summary report.pdf
  ragctl summary --export pdf report.pdf > report_summary.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				if format != "" {
					file, err := core.Usecase.ExportSummary(ctx, source, entity.ResultFormat(format))
					if err != nil {
						return err
					}
					_, err = out.Write(file.Content)
					return err
				}

				summary, err := core.Usecase.Summarize(ctx, source)
				if err != nil {
					return err
				}
				return c.print(out, summary, func(w io.Writer) error {
					return printSummary(w, summary)
				})
			})
		},
	}

	cmd.Flags().StringVar(&format, "export", "", "Render as markdown, pdf or docx")

	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored point and recreate the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				if err := core.Usecase.Clear(ctx); err != nil {
					return err
				}
				return c.print(out, entity.StatusResponse{Status: "cleared"}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, "cleared")
					return err
				})
			})
		},
	}
}

func newDocumentsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List ingestion records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCore(cmd, func(ctx context.Context, core *builder.Core, out io.Writer) error {
				docs, err := core.Usecase.ListDocuments(ctx)
				if err != nil {
					return err
				}
				return c.print(out, entity.ListDocumentsResponse{Documents: docs}, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "SOURCE\tCHUNKS\tBYTES\tINGESTED")
					for _, d := range docs {
						fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", d.Source, d.ChunkCount, d.SizeBytes, d.CreatedAt.Format("2006-01-02 15:04:05"))
					}
					return tw.Flush()
				})
			})
		},
	}
}

func printSummary(w io.Writer, s *entity.Summary) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n", s.Source, s.Summary)
	return err
}
