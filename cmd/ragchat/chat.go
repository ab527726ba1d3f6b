package main

import (
	"os"

	"github.com/aretw0/ragchat/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	Long: `Starts an interactive chat with the agent.

Type a question to stream an answer. Ctrl+C cancels the answer in progress;
at the prompt it exits. Type /help for document commands.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The runner handles interrupts itself so Ctrl+C can cancel a single query.
	return cli.RunChat(cmd.Context(), cfg, os.Stdin, os.Stdout)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
