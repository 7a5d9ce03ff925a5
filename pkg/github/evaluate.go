package github

// Evaluate compares each repository snapshot against the preference set and
// returns the repositories with at least one enforced setting out of line.
//
// The result preserves input order and is fully determined by its inputs.
// Each violation records only the defined-and-differing settings, mapped to
// the repository's current value; the preference set itself remains the
// source of the desired values. An empty preference set flags nothing.
func Evaluate(repos []Repository, prefs Preferences) []Violation {
	if prefs.IsEmpty() {
		return nil
	}

	var violations []Violation
	for _, repo := range repos {
		var current map[Setting]bool
		for _, setting := range Settings() {
			want := prefs.Get(setting)
			if want == nil {
				continue
			}
			if got := repo.Settings.Get(setting); got != *want {
				if current == nil {
					current = make(map[Setting]bool)
				}
				current[setting] = got
			}
		}
		if len(current) > 0 {
			violations = append(violations, Violation{
				ID:      repo.ID,
				Name:    repo.Name,
				Current: current,
			})
		}
	}

	return violations
}
