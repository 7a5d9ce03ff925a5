package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repoconform/internal/ui"
	"repoconform/pkg/config"
	"repoconform/pkg/github"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan owned repositories for settings that deviate from your preferences",
	Long: `Scan fetches every repository owned by the authenticated user, compares
each one against the configured preference set, and reports the repositories
whose settings deviate. Scan is read-only and never changes anything.`,
	RunE: runScan,
}

func runScan(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateWithToken(ctx, cfg.GitHub.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return err
	}

	fmt.Printf("✓ Authenticated as %s\n", tokenInfo.User)

	client := github.NewClient(authManager.Token())

	fmt.Println("🔍 Fetching owned repositories...")
	repos, err := github.FetchAll(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to fetch repositories: %w", err)
	}

	violations := github.Evaluate(repos, cfg.Preferences)
	ui.NewReporter(os.Stdout).ScanReport(cfg.Preferences, len(repos), violations)

	return nil
}
