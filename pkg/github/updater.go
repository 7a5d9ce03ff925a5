package github

import "context"

// BatchResult reports the per-repository outcome of a batch update. Every
// repository in the batch appears in exactly one of Succeeded or Failed.
type BatchResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"failed"`
	Summary   BatchSummary     `json:"summary"`
}

// BatchSummary holds aggregate counters for a batch update.
type BatchSummary struct {
	Total        int `json:"total"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// Updater applies a preference set to many repositories with one independent
// write per repository. Writes target distinct remote resources and share no
// mutable state, so they run concurrently with no ordering guarantee; a
// failure in one never prevents or invalidates the others.
type Updater struct {
	client  SettingsUpdater
	owner   string
	limiter *RateLimiter
}

// NewUpdater creates an updater issuing writes as the given owner.
func NewUpdater(client SettingsUpdater, owner string, limiter *RateLimiter) *Updater {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultConcurrency)
	}
	return &Updater{
		client:  client,
		owner:   owner,
		limiter: limiter,
	}
}

type updateJob struct {
	name string
}

type updateResult struct {
	name string
	err  error
}

// ApplyAll issues one settings write per named repository and collects the
// per-repository outcome. The returned error is nil when every write
// succeeded, and a *BatchError otherwise; the BatchResult is populated in
// both cases. Writes already dispatched when the context is cancelled are
// allowed to complete.
func (u *Updater) ApplyAll(ctx context.Context, names []string, prefs Preferences) (*BatchResult, error) {
	result := &BatchResult{
		Succeeded: make([]string, 0, len(names)),
		Failed:    make(map[string]error),
		Summary:   BatchSummary{Total: len(names)},
	}

	if len(names) == 0 {
		return result, nil
	}

	workers := u.limiter.Concurrency()
	if workers > len(names) {
		workers = len(names)
	}

	jobs := make(chan updateJob, len(names))
	results := make(chan updateResult, len(names))

	for i := 0; i < workers; i++ {
		go u.worker(ctx, prefs, jobs, results)
	}

	for _, name := range names {
		jobs <- updateJob{name: name}
	}
	close(jobs)

	for range names {
		res := <-results
		if res.err != nil {
			result.Failed[res.name] = res.err
			result.Summary.FailureCount++
		} else {
			result.Succeeded = append(result.Succeeded, res.name)
			result.Summary.SuccessCount++
		}
	}

	if len(result.Failed) > 0 {
		return result, NewBatchError(result)
	}
	return result, nil
}

// worker drains jobs, applying the preference set to one repository at a
// time within a concurrency slot.
func (u *Updater) worker(ctx context.Context, prefs Preferences, jobs <-chan updateJob, results chan<- updateResult) {
	for job := range jobs {
		results <- updateResult{
			name: job.name,
			err:  u.applyOne(ctx, job.name, prefs),
		}
	}
}

func (u *Updater) applyOne(ctx context.Context, name string, prefs Preferences) error {
	if err := u.limiter.AcquireSlot(ctx); err != nil {
		return err
	}
	defer u.limiter.ReleaseSlot()

	if err := u.client.UpdateSettings(ctx, u.owner, name, prefs); err != nil {
		return WrapGitHubError(err, "repository "+u.owner+"/"+name)
	}
	return nil
}
