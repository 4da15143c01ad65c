package subgraph

import "context"

// PageFetcher returns up to PageWindow entities whose id is strictly
// greater than lastID, ordered ascending by id. Each engine/source
// supplies its own PageFetcher closure over a concrete entity type and
// GraphQL query string.
type PageFetcher[T any] func(ctx context.Context, lastID string, window int) ([]T, error)

// IDOf extracts the cursor field from an entity of type T.
type IDOf[T any] func(T) string

// Paginate drains a PageFetcher to exhaustion using the "last id seen"
// cursor convention, grounded in
// original_source/oracle/oracle/clients.py's
// execute_base_gql_paginated_query: every page must be strictly larger
// than the previous cursor and a page shorter than PageWindow ends
// iteration. A page containing a duplicate id (the subgraph returning
// the same entity twice across chunk boundaries) is fatal, matching
// the Python client's "assert" on monotonic ids.
func Paginate[T any](ctx context.Context, fetch PageFetcher[T], idOf IDOf[T]) ([]T, error) {
	var all []T
	seen := make(map[string]struct{})
	lastID := ""

	for {
		page, err := fetch(ctx, lastID, PageWindow)
		if err != nil {
			return nil, err
		}
		for _, entity := range page {
			id := idOf(entity)
			if _, dup := seen[id]; dup {
				return nil, &DuplicateIDError{ID: id}
			}
			seen[id] = struct{}{}
			lastID = id
		}
		all = append(all, page...)

		if len(page) < PageWindow {
			return all, nil
		}
	}
}

// DuplicateIDError reports a subgraph page returning an id already
// seen in an earlier page — treated as fatal rather than silently
// deduplicated, since it signals the subgraph's own ordering broke.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return "subgraph: duplicate entity id " + e.ID + " across pagination pages"
}
