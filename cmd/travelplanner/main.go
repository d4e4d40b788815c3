package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "travelplanner",
	Short: "Travel planning API server and client",
	Long: `Travel planning API server and client.

Without a subcommand the API server is started, as with "travelplanner serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
