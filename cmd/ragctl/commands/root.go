package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/futig/mini-rag/internal/builder"
	"github.com/futig/mini-rag/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// CoreFactory builds the shared application core for one command run
type CoreFactory func(ctx context.Context, env string) (*builder.Core, error)

func defaultCoreFactory(ctx context.Context, env string) (*builder.Core, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return builder.BuildCore(ctx, cfg)
}

// cli carries the global flags and the core factory to every subcommand
type cli struct {
	env    string
	output string
	build  CoreFactory
}

// withCore builds the core, runs fn with a logging context and releases the core afterwards
func (c *cli) withCore(cmd *cobra.Command, fn func(ctx context.Context, core *builder.Core, out io.Writer) error) error {
	core, err := c.build(cmd.Context(), c.env)
	if err != nil {
		return err
	}
	defer core.Close()

	ctx := ctxzap.ToContext(cmd.Context(), core.Logger)
	return fn(ctx, core, cmd.OutOrStdout())
}

func (c *cli) print(out io.Writer, v any, text func(io.Writer) error) error {
	if c.output == formatJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}
	return text(out)
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd(defaultCoreFactory).Execute()
}

// NewRootCmd creates the ragctl command tree
func NewRootCmd(build CoreFactory) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:   "ragctl",
		Short: "Operate the mini RAG index from the command line",
		Long: `ragctl works on the same Qdrant collection, embedding backend and generator as the
HTTP server, configured from the same environment.

Examples:
  ragctl seed
  ragctl ingest "docs/**/*.pdf" notes.md
  ragctl query "what is retrieval augmented generation?"
  ragctl query --source report.pdf "summarize"
  ragctl --output json documents`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.output != formatText && c.output != formatJSON {
				return fmt.Errorf("--output must be %q or %q, got %q", formatText, formatJSON, c.output)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.env, "env", "local", "Environment whose .env.<env> file is loaded")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", formatText, "Output format (text, json)")

	root.AddCommand(
		newSeedCmd(c),
		newIngestCmd(c),
		newQueryCmd(c),
		newSummaryCmd(c),
		newClearCmd(c),
		newDocumentsCmd(c),
	)

	return root
}
