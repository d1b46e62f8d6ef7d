package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"sync"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// PageFunc fetches the page of records starting at offset, holding at most
// limit records. An empty page marks the end of the collection.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// StreamOption configures a Stream.
type StreamOption func(*streamOptions)

type streamOptions struct {
	pageSize int
}

// WithPageSize sets the number of records requested per page.
func WithPageSize(size int) StreamOption {
	return func(o *streamOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// Stream is a lazy, forward-only, single-pass sequence over an offset
// paginated collection.
//
// Pages are requested strictly in increasing offset order, one at a time, and
// only when the current page is used up. The stream ends exactly when a page
// comes back empty, so a short page still costs one more request. A failed
// page fetch ends the stream; every later call reports the same error.
type Stream[T any] struct {
	ctx      context.Context
	fetch    PageFunc[T]
	pageSize int

	mu     sync.Mutex
	offset int
	page   []T
	pos    int
	done   bool
	err    error
}

// NewStream creates a stream over fetch. The context is used for every page
// request the stream makes.
func NewStream[T any](ctx context.Context, fetch PageFunc[T], opts ...StreamOption) *Stream[T] {
	options := streamOptions{pageSize: constants.DefaultPageSize}
	for _, opt := range opts {
		opt(&options)
	}

	return &Stream[T]{
		ctx:      ctx,
		fetch:    fetch,
		pageSize: options.pageSize,
	}
}

// PageSize returns the number of records requested per page.
func (s *Stream[T]) PageSize() int {
	return s.pageSize
}

// HasNext reports whether Next will return an item. It may fetch the next
// page. It returns false once the stream is exhausted or has failed; use Err
// to tell the two apart.
func (s *Stream[T]) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advance() == nil
}

// Next returns the next item. It returns ErrNoMoreItems once the stream is
// exhausted, or the error that terminated the stream.
func (s *Stream[T]) Next() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T

	err := s.advance()
	if err != nil {
		return zero, err
	}

	item := s.page[s.pos]
	s.page[s.pos] = zero
	s.pos++

	return item, nil
}

// Err returns the error that terminated the stream, if any.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// All drains the stream into a slice.
func (s *Stream[T]) All() ([]T, error) {
	var items []T

	for item, err := range s.Seq() {
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, nil
}

// Take returns up to n items from the stream. It stops without requesting
// another page once n items have been read. A non-positive n reads nothing.
func (s *Stream[T]) Take(n int) ([]T, error) {
	if n <= 0 {
		return []T{}, nil
	}

	items := make([]T, 0, min(n, s.PageSize()))

	for len(items) < n {
		item, err := s.Next()
		if errors.Is(err, ErrNoMoreItems) {
			break
		}

		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach calls fn for each item until the stream ends or fn fails.
func (s *Stream[T]) ForEach(fn func(T) error) error {
	for item, err := range s.Seq() {
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Seq returns the stream as a range-over-func sequence. A terminating error
// is yielded once as the final pair.
func (s *Stream[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := s.Next()
			if errors.Is(err, ErrNoMoreItems) {
				return
			}

			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			if !yield(item, nil) {
				return
			}
		}
	}
}

// advance makes s.page[s.pos] the next item. Callers hold s.mu.
func (s *Stream[T]) advance() error {
	for s.pos >= len(s.page) {
		if s.err != nil {
			return s.err
		}

		if s.done {
			return ErrNoMoreItems
		}

		page, err := s.fetch(s.ctx, s.offset, s.pageSize)
		if err != nil {
			s.err = err
			s.page = nil
			s.pos = 0

			return err
		}

		s.page = page
		s.pos = 0

		if len(page) == 0 {
			s.done = true

			return ErrNoMoreItems
		}

		s.offset += s.pageSize
	}

	return nil
}

// TransformPages maps every record of each page through transform before any
// record of the page is yielded. A transform failure fails the whole page,
// wrapped in ErrStreamTransform.
func TransformPages[R, T any](fetch PageFunc[R], transform func(R) (T, error)) PageFunc[T] {
	return func(ctx context.Context, offset, limit int) ([]T, error) {
		records, err := fetch(ctx, offset, limit)
		if err != nil {
			return nil, err
		}

		items := make([]T, 0, len(records))

		for index, record := range records {
			item, err := transform(record)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d at offset %d: %w", ErrStreamTransform, index, offset, err)
			}

			items = append(items, item)
		}

		return items, nil
	}
}

// APIPages returns the page function of an offset/limit list endpoint. Each
// page is requested as endpoint?offset=O&limit=N and must be a JSON array of
// objects.
func APIPages(transport Transport, endpoint string) PageFunc[Record] {
	return func(ctx context.Context, offset, limit int) ([]Record, error) {
		query := url.Values{}
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(limit))

		resp, err := get(ctx, transport, endpoint, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %s at offset %d: %w", ErrFetchFailed, endpoint, offset, err)
		}

		var page []Record

		err = json.Unmarshal(resp.Body, &page)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s page at offset %d: %w", ErrFetchFailed, endpoint, offset, err)
		}

		return page, nil
	}
}
