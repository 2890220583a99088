package main

import (
	"os"

	"github.com/spf13/cobra"

	"sdbridge/internal/interfaces/cli/migrate"
	"sdbridge/internal/interfaces/cli/serve"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sdbridge",
		Short: "sdbridge - ServiceDesk to Telegram sync bridge",
		Long:  `sdbridge keeps a local cache of ServiceDesk tickets per linked user and pushes status notifications to Telegram.`,
	}

	rootCmd.AddCommand(
		serve.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
