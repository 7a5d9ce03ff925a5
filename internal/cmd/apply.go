package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"repoconform/internal/ui"
	"repoconform/pkg/config"
	"repoconform/pkg/fuzzy"
	"repoconform/pkg/github"
)

var (
	applyAll     bool
	applyDryRun  bool
	applySaved   bool
	applyRepos   []string
	applyWorkers int
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply your preferences to non-conforming repositories",
	Long: `Apply scans owned repositories for settings that deviate from the
configured preference set, then issues one settings update per selected
repository. Updates run concurrently and independently: a failure on one
repository never prevents the others.

By default the non-conforming repositories are offered in an interactive
picker. Use --all to update every non-conforming repository, --repos to name
a subset, or --saved to reuse the selection stored in the config file.

Examples:
  repoconform apply
  repoconform apply --all
  repoconform apply --all --dry-run
  repoconform apply --repos service-a,service-b
  repoconform apply --saved --workers 10`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyAll, "all", false, "Update every non-conforming repository without prompting")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Preview the updates without applying them")
	applyCmd.Flags().BoolVar(&applySaved, "saved", false, "Use the selection saved in the config file")
	applyCmd.Flags().StringSliceVar(&applyRepos, "repos", nil, "Comma-separated list of repository names to update (e.g. --repos repo1,repo2)")
	applyCmd.Flags().IntVar(&applyWorkers, "workers", github.DefaultConcurrency, "Number of concurrent repository updates")
}

func runApply(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if applySaved && len(cfg.Selection) == 0 {
		return fmt.Errorf("no saved selection in config: add a selection list or use --all or --repos")
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

	limiter := github.NewRateLimiter(applyWorkers)
	client := github.NewClientWithRateLimiter(authManager.Token(), limiter)

	fmt.Println("🔍 Fetching owned repositories...")
	repos, err := github.FetchAll(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to fetch repositories: %w", err)
	}

	violations := github.Evaluate(repos, cfg.Preferences)
	if len(violations) == 0 {
		fmt.Printf("✅ All %d repositories already conform. Nothing to apply.\n", len(repos))
		return nil
	}

	fmt.Printf("Found %d non-conforming repositories out of %d.\n", len(violations), len(repos))

	targets, err := selectTargets(violations, repoNameSet(repos), cfg.Selection)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println("No repositories selected. Nothing to apply.")
		return nil
	}

	if applyDryRun {
		displayDryRun(cfg.Preferences, violations, targets)
		return nil
	}

	fmt.Printf("\nApplying preferences to %d repositories...\n", len(targets))

	updater := github.NewUpdater(client, tokenInfo.User, limiter)
	result, err := updater.ApplyAll(ctx, targets, cfg.Preferences)
	ui.NewReporter(os.Stdout).ApplyReport(result)

	if err != nil {
		if batchErr, ok := err.(*github.BatchError); ok && batchErr.IsPartialFailure() {
			return fmt.Errorf("partial failure: %d repositories updated, %d failed", result.Summary.SuccessCount, result.Summary.FailureCount)
		}
		return fmt.Errorf("failed to apply preferences: %w", err)
	}

	return nil
}

// selectTargets narrows the non-conforming list down to the repositories the
// user chose. The result is always a duplicate-free subset of the
// non-conforming names; unknown names are rejected rather than ignored.
func selectTargets(violations []github.Violation, fetched map[string]bool, saved []config.SavedRepository) ([]string, error) {
	switch {
	case applyAll:
		return violationNames(violations), nil

	case len(applyRepos) > 0:
		return filterByNames(violations, fetched, applyRepos)

	case applySaved:
		names := make([]string, 0, len(saved))
		for _, repo := range saved {
			if repo.Name == "" {
				return nil, fmt.Errorf("saved selection entry missing a name: fix the selection list in the config file")
			}
			names = append(names, repo.Name)
		}
		return filterByNames(violations, fetched, names)

	default:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no interactive terminal: use --all or --repos to select repositories")
		}
		return promptSelection(violations)
	}
}

// filterByNames keeps the non-conforming repositories matching the given
// names. A name outside the fetched repository list is an error; a name that
// is fetched but already conforming is silently dropped.
func filterByNames(violations []github.Violation, fetched map[string]bool, names []string) ([]string, error) {
	for _, name := range names {
		if !fetched[name] {
			return nil, fmt.Errorf("repository %q not found among your owned repositories", name)
		}
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var targets []string
	for _, violation := range violations {
		if wanted[violation.Name] {
			targets = append(targets, violation.Name)
		}
	}
	return targets, nil
}

// promptSelection offers the non-conforming repositories in a fuzzy
// multi-select picker.
func promptSelection(violations []github.Violation) ([]string, error) {
	options := make([]fuzzy.Option, 0, len(violations))
	for _, violation := range violations {
		options = append(options, fuzzy.Option{
			Value:       violation.Name,
			Description: describeViolation(violation),
		})
	}

	finder := fuzzy.NewFzf("Select repositories to update (Tab to toggle):")
	if err := finder.SetOptions(options); err != nil {
		return nil, err
	}

	selected, err := finder.MultiSelect()
	if err != nil {
		return nil, fmt.Errorf("repository selection failed: %w", err)
	}

	// The picker echoes display lines; keep only known names, deduplicated
	known := make(map[string]bool, len(violations))
	for _, violation := range violations {
		known[violation.Name] = true
	}

	seen := make(map[string]bool, len(selected))
	var targets []string
	for _, name := range selected {
		if known[name] && !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}
	return targets, nil
}

// describeViolation summarizes the differing settings for the picker
func describeViolation(violation github.Violation) string {
	desc := ""
	for _, setting := range github.Settings() {
		if _, ok := violation.Current[setting]; !ok {
			continue
		}
		if desc != "" {
			desc += ", "
		}
		desc += string(setting)
	}
	return desc
}

// displayDryRun previews the writes that an unflagged run would issue
func displayDryRun(prefs github.Preferences, violations []github.Violation, targets []string) {
	wanted := make(map[string]github.Violation, len(violations))
	for _, violation := range violations {
		wanted[violation.Name] = violation
	}

	fmt.Printf("\n🔍 Dry-run mode: showing planned updates for %d repositories\n", len(targets))
	for _, name := range targets {
		violation, ok := wanted[name]
		if !ok {
			continue
		}
		fmt.Printf("\n📦 %s:\n", name)
		for _, setting := range github.Settings() {
			current, ok := violation.Current[setting]
			if !ok {
				continue
			}
			want := prefs.Get(setting)
			fmt.Printf("  ~ %s: %t → %t\n", setting.Label(), current, *want)
		}
	}
	fmt.Printf("\n✓ Dry-run completed. No changes were applied.\n")
}

// violationNames lists the non-conforming repository names in report order
func violationNames(violations []github.Violation) []string {
	names := make([]string, 0, len(violations))
	for _, violation := range violations {
		names = append(names, violation.Name)
	}
	return names
}

// repoNameSet indexes the fetched repositories by name
func repoNameSet(repos []github.Repository) map[string]bool {
	set := make(map[string]bool, len(repos))
	for _, repo := range repos {
		set[repo.Name] = true
	}
	return set
}
