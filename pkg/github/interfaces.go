package github

import "context"

// RepositoryPage is one page of the cursor-paginated repository listing.
// EndCursor is an opaque continuation token; it is only meaningful when
// HasNextPage is true.
type RepositoryPage struct {
	Repositories []Repository
	HasNextPage  bool
	EndCursor    string
}

// RepositoryLister fetches pages of the authenticated user's owned
// repositories. An empty cursor requests the first page.
type RepositoryLister interface {
	ListPage(ctx context.Context, cursor string) (*RepositoryPage, error)
}

// SettingsUpdater applies the defined entries of a preference set to a single
// repository. Unset entries must be absent from the write payload so the
// remote value is left untouched.
type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, owner, name string, prefs Preferences) error
}

// APIClient is the full set of GitHub operations the conformance pipeline
// depends on.
type APIClient interface {
	RepositoryLister
	SettingsUpdater

	// Viewer returns the authenticated user's login, used to scope the
	// repository listing and to address write requests.
	Viewer(ctx context.Context) (string, error)
}
