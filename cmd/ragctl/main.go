package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arcadehub/rules-chatbot/internal/bootstrap"
	"github.com/arcadehub/rules-chatbot/internal/config"
	"github.com/arcadehub/rules-chatbot/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("ragctl", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "ragctl",
		Short:         "Operational CLI for the rules chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIngestCmd(ctx, cfg))
	root.AddCommand(newAskCmd(ctx, cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newIngestCmd(ctx context.Context, cfg config.Config) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load, chunk, embed and index the content directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			report, err := app.Ingestor.Run(ctx, reset)
			if err != nil {
				return err
			}
			fmt.Printf("documents: %d\nchunks: %d\nnew: %d\ndropped: %d\n",
				report.DocumentsLoaded, report.ChunksTotal, report.ChunksNew, report.ChunksDropped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing collections and registry rows before indexing")
	return cmd
}

func newAskCmd(ctx context.Context, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the indexed content",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			answer, err := app.QueryUC.Answer(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer.Format())
			return nil
		},
	}
}
