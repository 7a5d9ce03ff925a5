package github

import (
	"context"
	"fmt"
)

// Pager walks the cursor-paginated repository listing one page at a time.
// Each page's cursor comes from the previous response; a stale cursor is
// never reused. Pager is not safe for concurrent use.
type Pager struct {
	lister RepositoryLister
	cursor string
	done   bool
}

// NewPager creates a pager positioned at the first page.
func NewPager(lister RepositoryLister) *Pager {
	return &Pager{lister: lister}
}

// Next fetches the next page, or returns (nil, nil) once the server has
// reported that no further page exists. Any fetch error ends the sequence.
func (p *Pager) Next(ctx context.Context) (*RepositoryPage, error) {
	if p.done {
		return nil, nil
	}

	page, err := p.lister.ListPage(ctx, p.cursor)
	if err != nil {
		p.done = true
		return nil, err
	}

	if page.HasNextPage && page.EndCursor != "" {
		p.cursor = page.EndCursor
	} else {
		p.done = true
	}

	return page, nil
}

// FetchAll retrieves the complete list of owned repositories, accumulating
// every page in server order. Any page failure aborts the whole fetch: a
// partial list would yield false conforming verdicts for the unseen
// repositories, so none is ever returned.
func FetchAll(ctx context.Context, lister RepositoryLister) ([]Repository, error) {
	pager := NewPager(lister)
	var all []Repository

	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing owned repositories: %w", err)
		}
		if page == nil {
			return all, nil
		}
		all = append(all, page.Repositories...)
	}
}
