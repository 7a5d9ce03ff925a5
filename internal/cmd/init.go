package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repoconform/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize repoconform configuration",
	Long: `Interactively choose the repository settings to enforce and save them
to the configuration file.`,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Load the existing config so a re-run keeps the token and saved selection
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.Preferences.IsEmpty() {
		fmt.Printf("⚠️  Preferences already configured at: %s\n", configPath)
		fmt.Print("Do you want to replace them? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response) // Ignore error for user input
		if response != "y" && response != "Y" {
			fmt.Println("Configuration initialization cancelled.")
			return nil
		}
	}

	prefs, err := PromptPreferences(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to capture preferences: %w", err)
	}

	if prefs.IsEmpty() {
		fmt.Println("No settings chosen. Nothing saved.")
		return nil
	}

	cfg.Preferences = prefs
	if err := cfg.SaveConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)
	fmt.Printf("📝 Enforcing %d setting(s). Run 'repoconform scan' to check your repositories.\n", len(prefs.Defined()))

	return nil
}
