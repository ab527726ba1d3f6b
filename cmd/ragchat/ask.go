package main

import (
	"os"
	"strings"

	"github.com/aretw0/ragchat/internal/cli"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask one question and print the answer",
	Long: `Sends a single question, waits for the final answer and prints it.
Exits non-zero when the exchange ends in an error, a timeout or a lost connection.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := signalContext(cmd)
		defer ctx.Cancel()

		return cli.RunAsk(ctx, cfg, strings.Join(args, " "), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
