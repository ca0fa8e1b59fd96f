package strapi

import (
	"context"
	"fmt"
	"time"
)

// DefaultPageSize is the window size TraverseAll and Iterator request when
// none is configured.
const DefaultPageSize = 50

// PageFetcher fetches one offset window of a collection.
type PageFetcher interface {
	FetchPage(ctx context.Context, start, limit int) (*Collection, error)
}

// PageFetcherFunc adapts a function to the PageFetcher interface.
type PageFetcherFunc func(ctx context.Context, start, limit int) (*Collection, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc) FetchPage(ctx context.Context, start, limit int) (*Collection, error) {
	return f(ctx, start, limit)
}

// TraversalOptions configures a full-collection traversal.
type TraversalOptions struct {
	// PageSize is the offset window size. Zero means DefaultPageSize.
	PageSize int

	// Timeout is the wall-clock budget for the whole traversal. It is
	// checked cooperatively between page requests, never mid-request: an
	// in-flight request always completes before the budget is enforced.
	// Zero means no budget.
	Timeout time.Duration

	// MaxPages caps the number of page requests regardless of the
	// reported total. Zero means no cap.
	MaxPages int
}

// TraverseAll fetches every entity of a collection window by window,
// sequentially, in server order. The loop ends when the collected count
// reaches the server-reported total, when a page comes back empty, or when
// the optional MaxPages cap is hit. An absent total terminates the
// traversal after the first page. Exceeding the Timeout budget returns a
// TimeoutError carrying the entities collected so far.
func TraverseAll(ctx context.Context, fetcher PageFetcher, opts TraversalOptions) ([]Entity, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	started := time.Now()

	var (
		entities []Entity
		total    int
		pages    int
	)

	for {
		if err := ctx.Err(); err != nil {
			return entities, fmt.Errorf("traversal cancelled: %w", err)
		}

		if opts.Timeout > 0 {
			if elapsed := time.Since(started); elapsed > opts.Timeout {
				return entities, &TimeoutError{
					Budget:    opts.Timeout,
					Elapsed:   elapsed,
					Collected: len(entities),
				}
			}
		}

		page, err := fetcher.FetchPage(ctx, len(entities), pageSize)
		if err != nil {
			return entities, fmt.Errorf("fetching page at offset %d: %w", len(entities), err)
		}

		pages++

		if page.Len() == 0 {
			return entities, nil
		}

		entities = append(entities, page.Items...)

		if reported, ok := page.Pagination.TotalCount(); ok {
			total = reported
		} else {
			total = 0
		}

		if len(entities) >= total {
			return entities, nil
		}

		if opts.MaxPages > 0 && pages >= opts.MaxPages {
			return entities, nil
		}
	}
}

// Iterator walks a collection window by window, yielding one page per Next
// call. Not safe for concurrent use.
type Iterator struct {
	fetcher  PageFetcher
	pageSize int

	start int
	total int
	begun bool
	done  bool
}

// NewIterator creates an iterator over the fetcher's collection.
func NewIterator(fetcher PageFetcher, pageSize int) *Iterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Iterator{fetcher: fetcher, pageSize: pageSize}
}

// HasNext reports whether another page may be available.
func (it *Iterator) HasNext() bool {
	if it.done {
		return false
	}

	if !it.begun {
		return true
	}

	return it.start < it.total
}

// Next fetches the next page. It returns ErrNoMoreItems once the
// collection is exhausted.
func (it *Iterator) Next(ctx context.Context) (*Collection, error) {
	if !it.HasNext() {
		return nil, ErrNoMoreItems
	}

	page, err := it.fetcher.FetchPage(ctx, it.start, it.pageSize)
	if err != nil {
		return nil, err
	}

	it.begun = true
	it.start += page.Len()

	if reported, ok := page.Pagination.TotalCount(); ok {
		it.total = reported
	} else {
		it.total = it.start
	}

	if page.Len() == 0 || it.start >= it.total {
		it.done = true
	}

	return page, nil
}

// All drains the iterator into a single slice.
func (it *Iterator) All(ctx context.Context) ([]Entity, error) {
	var entities []Entity

	for it.HasNext() {
		page, err := it.Next(ctx)
		if err != nil {
			return entities, err
		}

		entities = append(entities, page.Items...)
	}

	return entities, nil
}

// ForEach applies fn to every entity in traversal order, stopping at the
// first error.
func (it *Iterator) ForEach(ctx context.Context, fn func(Entity) error) error {
	for it.HasNext() {
		page, err := it.Next(ctx)
		if err != nil {
			return err
		}

		for _, entity := range page.Items {
			if err := fn(entity); err != nil {
				return err
			}
		}
	}

	return nil
}
