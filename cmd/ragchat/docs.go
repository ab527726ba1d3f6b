package main

import (
	"os"

	"github.com/aretw0/ragchat/internal/cli"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the indexed documents",
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <files...>",
	Short: "Upload .pdf, .docx or .txt files for indexing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := signalContext(cmd)
		defer ctx.Cancel()
		return cli.RunUpload(ctx, cfg, args, os.Stdout)
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the indexed documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := signalContext(cmd)
		defer ctx.Cancel()
		return cli.RunList(ctx, cfg, os.Stdout)
	},
}

var docsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")

		var confirm cli.ConfirmFunc
		if !yes {
			confirm = cli.TerminalConfirm(os.Stdin, os.Stdout)
		}

		ctx := signalContext(cmd)
		defer ctx.Cancel()
		return cli.RunClear(ctx, cfg, confirm, os.Stdout)
	},
}

func init() {
	docsClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	docsCmd.AddCommand(docsUploadCmd, docsListCmd, docsClearCmd)
	rootCmd.AddCommand(docsCmd)
}
