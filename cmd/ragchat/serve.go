package main

import (
	"log/slog"
	"os"

	"github.com/aretw0/ragchat/internal/cli"
	"github.com/aretw0/ragchat/internal/logging"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a mock agent backend",
	Long: `Starts an in-memory backend speaking the agent protocol: a streaming
endpoint, the single-response endpoint and the document routes. Useful for
demos and for developing against the client without a real RAG pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		nodes, _ := cmd.Flags().GetStringSlice("nodes")
		delay, _ := cmd.Flags().GetDuration("delay")
		fail, _ := cmd.Flags().GetString("fail")
		debug, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		ctx := signalContext(cmd)
		defer ctx.Cancel()

		opts := cli.ServeOptions{
			Addr:   addr,
			Delay:  delay,
			Fail:   fail,
			Logger: logging.NewJSON(os.Stderr, level),
		}
		if cmd.Flags().Changed("nodes") {
			opts.Nodes = nodes
		}
		return cli.RunServe(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8000", "Address to listen on")
	serveCmd.Flags().StringSlice("nodes", nil, "Pipeline nodes to report (default planner,retriever,writer)")
	serveCmd.Flags().Duration("delay", 0, "Delay before every streamed event")
	serveCmd.Flags().String("fail", "", "Answer every query with this backend error")
}
