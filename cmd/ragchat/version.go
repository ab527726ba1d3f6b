package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ragchat"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ragchat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ragchat version %s\n", strings.TrimSpace(ragchat.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
