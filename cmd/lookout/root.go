package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zhy0216/lookout/pkg/config"
	"github.com/zhy0216/lookout/pkg/dispatch"
	"github.com/zhy0216/lookout/pkg/logging"
)

var exampleQueries = []string{
	"Say hello",
	"I might be interested in the weather, would you know how to get a weather report?",
	"What's the weather like in Seattle, Washington?",
	"What is the IP address of www.example.com?",
}

// queryProcessor is satisfied by *dispatch.Dispatcher.
type queryProcessor interface {
	Process(ctx context.Context, query string) string
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookout [query...]",
		Short: "Answer questions with weather and DNS lookups",
		Long: `lookout sends each query to a language model that may call one of two
lookups: a US weather forecast or a hostname resolution. Without arguments
it runs a fixed set of example queries.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := logging.New(os.Stderr, cfg.LogLevel)
			d, err := dispatch.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			queries := exampleQueries
			if len(args) > 0 {
				queries = args
			}
			runQueries(ctx, cmd.OutOrStdout(), d, queries)
			return nil
		},
	}
}

// runQueries processes each query in order and prints it with its result.
func runQueries(ctx context.Context, out io.Writer, p queryProcessor, queries []string) {
	for _, q := range queries {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "\nQuery: %s\n", q)
		fmt.Fprintln(out, strings.Repeat("-", 50))
		fmt.Fprintln(out, p.Process(ctx, q))
		fmt.Fprintln(out, strings.Repeat("=", 50))
	}
}
