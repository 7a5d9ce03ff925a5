package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// DefaultPageSize is the page size requested from the repository listing.
// 100 is the maximum the API accepts.
const DefaultPageSize = 100

// Client implements APIClient against the real GitHub API. The repository
// listing goes through the GraphQL endpoint (cursor pagination delivers all
// nine settings in one query per page); settings updates go through the REST
// endpoint, whose sparse edit payload maps directly onto the preference set.
type Client struct {
	rest    *github.Client
	graphql *githubv4.Client
	limiter *RateLimiter
}

// NewClient creates an authenticated client from a personal access token.
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		rest:    github.NewClient(tc),
		graphql: githubv4.NewClient(tc),
	}
}

// NewClientWithRateLimiter creates a client that feeds rate-limit headers
// from write responses into the given limiter.
func NewClientWithRateLimiter(token string, limiter *RateLimiter) *Client {
	c := NewClient(token)
	c.limiter = limiter
	return c
}

// Viewer returns the authenticated user's login.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	var login string

	err := WithRetry(func() error {
		user, _, err := c.rest.Users.Get(ctx, "")
		if err != nil {
			return WrapGitHubError(err, "authenticated user")
		}
		login = user.GetLogin()
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return "", err
	}
	return login, nil
}

// repositoryNode mirrors the GraphQL repository fields the snapshot needs.
type repositoryNode struct {
	ID                  string
	Name                string
	AutoMergeAllowed    bool
	DeleteBranchOnMerge bool
	ForkingAllowed      bool
	HasIssuesEnabled    bool
	HasProjectsEnabled  bool
	HasWikiEnabled      bool
	MergeCommitAllowed  bool
	RebaseMergeAllowed  bool
	SquashMergeAllowed  bool
}

// ownedRepositoriesQuery pages through the viewer's owned repositories.
type ownedRepositoriesQuery struct {
	Viewer struct {
		Repositories struct {
			Nodes    []repositoryNode
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
		} `graphql:"repositories(first: $first, after: $cursor, affiliations: OWNER, ownerAffiliations: OWNER)"`
	}
}

// ListPage fetches one page of owned repositories. An empty cursor requests
// the first page.
func (c *Client) ListPage(ctx context.Context, cursor string) (*RepositoryPage, error) {
	variables := map[string]interface{}{
		"first":  githubv4.Int(DefaultPageSize),
		"cursor": (*githubv4.String)(nil),
	}
	if cursor != "" {
		variables["cursor"] = githubv4.String(cursor)
	}

	var query ownedRepositoriesQuery

	err := WithRetry(func() error {
		if err := c.graphql.Query(ctx, &query, variables); err != nil {
			return WrapGitHubError(err, "repository listing")
		}
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return nil, err
	}

	page := &RepositoryPage{
		Repositories: make([]Repository, 0, len(query.Viewer.Repositories.Nodes)),
		HasNextPage:  query.Viewer.Repositories.PageInfo.HasNextPage,
		EndCursor:    string(query.Viewer.Repositories.PageInfo.EndCursor),
	}
	for _, node := range query.Viewer.Repositories.Nodes {
		page.Repositories = append(page.Repositories, Repository{
			ID:   node.ID,
			Name: node.Name,
			Settings: RepoSettings{
				AutoMerge:    node.AutoMergeAllowed,
				DeleteBranch: node.DeleteBranchOnMerge,
				Forking:      node.ForkingAllowed,
				Issues:       node.HasIssuesEnabled,
				Projects:     node.HasProjectsEnabled,
				Wiki:         node.HasWikiEnabled,
				MergeCommit:  node.MergeCommitAllowed,
				RebaseMerge:  node.RebaseMergeAllowed,
				SquashMerge:  node.SquashMergeAllowed,
			},
		})
	}

	return page, nil
}

// UpdateSettings applies the defined preference entries to one repository.
// Unset entries stay nil and are omitted from the JSON payload, so the
// remote value for unenforced settings is left untouched.
func (c *Client) UpdateSettings(ctx context.Context, owner, name string, prefs Preferences) error {
	edit := &github.Repository{
		AllowAutoMerge:      prefs.AutoMerge,
		DeleteBranchOnMerge: prefs.DeleteBranch,
		AllowForking:        prefs.Forking,
		HasIssues:           prefs.Issues,
		HasProjects:         prefs.Projects,
		HasWiki:             prefs.Wiki,
		AllowMergeCommit:    prefs.MergeCommit,
		AllowRebaseMerge:    prefs.RebaseMerge,
		AllowSquashMerge:    prefs.SquashMerge,
	}

	return WithRetry(func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		_, resp, err := c.rest.Repositories.Edit(ctx, owner, name, edit)
		if resp != nil && c.limiter != nil {
			c.limiter.UpdateLimits(resp.Rate.Remaining, resp.Rate.Reset.Time)
		}
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("repository %s/%s", owner, name))
		}
		return nil
	}, DefaultRetryConfig())
}

var _ APIClient = (*Client)(nil)
