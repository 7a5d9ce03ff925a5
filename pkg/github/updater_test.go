package github

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettingsUpdater records every write and fails the repositories it is
// told to fail. Safe for concurrent use.
type fakeSettingsUpdater struct {
	mu      sync.Mutex
	applied map[string]Preferences
	errs    map[string]error
}

func newFakeSettingsUpdater() *fakeSettingsUpdater {
	return &fakeSettingsUpdater{
		applied: make(map[string]Preferences),
		errs:    make(map[string]error),
	}
}

func (f *fakeSettingsUpdater) UpdateSettings(_ context.Context, _, name string, prefs Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[name]; ok {
		return err
	}
	f.applied[name] = prefs
	return nil
}

func TestApplyAll_AllSucceed(t *testing.T) {
	client := newFakeSettingsUpdater()
	updater := NewUpdater(client, "octocat", nil)
	prefs := Preferences{Wiki: boolPtr(false)}

	result, err := updater.ApplyAll(context.Background(), []string{"a", "b", "c"}, prefs)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 3, result.Summary.SuccessCount)
	assert.Equal(t, 0, result.Summary.FailureCount)
}

func TestApplyAll_OneFailureDoesNotAbortSiblings(t *testing.T) {
	client := newFakeSettingsUpdater()
	client.errs["b"] = errors.New("boom")
	updater := NewUpdater(client, "octocat", nil)
	prefs := Preferences{SquashMerge: boolPtr(true)}

	result, err := updater.ApplyAll(context.Background(), []string{"a", "b", "c"}, prefs)

	require.Error(t, err)
	require.NotNil(t, result)

	assert.ElementsMatch(t, []string{"a", "c"}, result.Succeeded)
	require.Contains(t, result.Failed, "b")
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.SuccessCount)
	assert.Equal(t, 1, result.Summary.FailureCount)

	// Both siblings were actually written
	assert.Contains(t, client.applied, "a")
	assert.Contains(t, client.applied, "c")

	batchErr, ok := err.(*BatchError)
	require.True(t, ok)
	assert.True(t, batchErr.IsPartialFailure())
	assert.Equal(t, []string{"b"}, batchErr.FailedRepositories())
}

func TestApplyAll_AllFail(t *testing.T) {
	client := newFakeSettingsUpdater()
	client.errs["a"] = errors.New("boom a")
	client.errs["b"] = errors.New("boom b")
	updater := NewUpdater(client, "octocat", nil)

	result, err := updater.ApplyAll(context.Background(), []string{"a", "b"}, Preferences{Wiki: boolPtr(false)})

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)

	batchErr, ok := err.(*BatchError)
	require.True(t, ok)
	assert.False(t, batchErr.IsPartialFailure())
}

func TestApplyAll_KeepsFailureClassification(t *testing.T) {
	// The client surfaces an exhausted retry as a wrapped error; the batch
	// result must still carry the underlying taxonomy, not "unknown"
	client := newFakeSettingsUpdater()
	client.errs["a"] = fmt.Errorf("operation failed after 3 retries: %w", &GitHubError{
		Type:      ErrorTypeRateLimit,
		Message:   "rate limit exceeded",
		Retryable: true,
	})
	updater := NewUpdater(client, "octocat", nil)

	result, err := updater.ApplyAll(context.Background(), []string{"a"}, Preferences{Wiki: boolPtr(false)})

	require.Error(t, err)
	require.Contains(t, result.Failed, "a")

	var ghErr *GitHubError
	require.ErrorAs(t, result.Failed["a"], &ghErr)
	assert.Equal(t, ErrorTypeRateLimit, ghErr.Type)
}

func TestApplyAll_EmptyBatch(t *testing.T) {
	client := newFakeSettingsUpdater()
	updater := NewUpdater(client, "octocat", nil)

	result, err := updater.ApplyAll(context.Background(), nil, Preferences{Wiki: boolPtr(false)})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 0, result.Summary.Total)
	assert.Empty(t, client.applied, "no writes may be issued for an empty batch")
}

func TestApplyAll_PassesPreferencesThrough(t *testing.T) {
	client := newFakeSettingsUpdater()
	updater := NewUpdater(client, "octocat", nil)
	prefs := Preferences{
		SquashMerge: boolPtr(true),
		Wiki:        boolPtr(false),
	}

	_, err := updater.ApplyAll(context.Background(), []string{"a"}, prefs)

	require.NoError(t, err)
	applied := client.applied["a"]

	// Enforced entries carry through; everything else stays nil so the edit
	// payload leaves those settings untouched
	require.NotNil(t, applied.SquashMerge)
	assert.True(t, *applied.SquashMerge)
	require.NotNil(t, applied.Wiki)
	assert.False(t, *applied.Wiki)
	assert.Nil(t, applied.AutoMerge)
	assert.Nil(t, applied.Issues)
	assert.Nil(t, applied.MergeCommit)
}

func TestApplyAll_LargeBatchCompleteAndExactlyOnce(t *testing.T) {
	client := newFakeSettingsUpdater()
	updater := NewUpdater(client, "octocat", NewRateLimiter(8))
	prefs := Preferences{Issues: boolPtr(true)}

	names := make([]string, 0, 100)
	for _, repo := range makeRepos(0, 100) {
		names = append(names, repo.Name)
	}

	result, err := updater.ApplyAll(context.Background(), names, prefs)

	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 100)
	assert.Len(t, client.applied, 100)
}

func TestApplyAll_ThenReevaluateConforms(t *testing.T) {
	prefs := Preferences{
		SquashMerge: boolPtr(true),
		Wiki:        boolPtr(false),
	}
	repos := []Repository{
		{ID: "1", Name: "x", Settings: RepoSettings{SquashMerge: false, Wiki: true}},
		{ID: "2", Name: "y", Settings: RepoSettings{SquashMerge: true, Wiki: true}},
	}

	violations := Evaluate(repos, prefs)
	require.Len(t, violations, 2)

	client := newFakeSettingsUpdater()
	updater := NewUpdater(client, "octocat", nil)

	_, err := updater.ApplyAll(context.Background(), violationNamesForTest(violations), prefs)
	require.NoError(t, err)

	// Re-read the snapshots with the writes folded in
	updated := make([]Repository, len(repos))
	copy(updated, repos)
	for i := range updated {
		applied, ok := client.applied[updated[i].Name]
		if !ok {
			continue
		}
		for _, setting := range Settings() {
			if want := applied.Get(setting); want != nil {
				settings := &updated[i].Settings
				applySettingForTest(settings, setting, *want)
			}
		}
	}

	assert.Empty(t, Evaluate(updated, prefs))
}

func violationNamesForTest(violations []Violation) []string {
	names := make([]string, 0, len(violations))
	for _, violation := range violations {
		names = append(names, violation.Name)
	}
	return names
}

func applySettingForTest(s *RepoSettings, setting Setting, value bool) {
	switch setting {
	case SettingAutoMerge:
		s.AutoMerge = value
	case SettingDeleteBranch:
		s.DeleteBranch = value
	case SettingForking:
		s.Forking = value
	case SettingIssues:
		s.Issues = value
	case SettingProjects:
		s.Projects = value
	case SettingWiki:
		s.Wiki = value
	case SettingMergeCommit:
		s.MergeCommit = value
	case SettingRebaseMerge:
		s.RebaseMerge = value
	case SettingSquashMerge:
		s.SquashMerge = value
	}
}
