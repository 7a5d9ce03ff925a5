package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repoconform",
	Short: "A CLI tool to keep GitHub repository settings conforming to your preferences",
	Long: `Repoconform keeps the settings of every repository you own in line with a
declared preference set. Choose once which merge strategies, features, and
branch behaviors your repositories should have, then scan for repositories
that drifted and apply your preferences to all of them at once.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(applyCmd)
}
