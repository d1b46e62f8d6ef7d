package scratch_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

var errBoom = errors.New("boom")

// fakeTransport serves canned bodies by path and records every request.
type fakeTransport struct {
	mu       sync.Mutex
	bodies   map[string]string
	failures map[string]int
	requests []*scratch.Request
	calls    atomic.Int64
	inflight atomic.Int64
	gate     chan struct{}
}

func newFakeTransport(bodies map[string]string) *fakeTransport {
	return &fakeTransport{
		bodies:   bodies,
		failures: make(map[string]int),
	}
}

// failNext makes the next n requests for path fail.
func (f *fakeTransport) failNext(path string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[path] = n
}

func (f *fakeTransport) count() int {
	return int(f.calls.Load())
}

func (f *fakeTransport) Do(ctx context.Context, req *scratch.Request) (*scratch.Response, error) {
	f.calls.Add(1)
	f.inflight.Add(1)
	defer f.inflight.Add(-1)

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	if f.failures[req.Path] > 0 {
		f.failures[req.Path]--

		return nil, errBoom
	}

	body, ok := f.bodies[req.Path]
	if !ok {
		return &scratch.Response{StatusCode: http.StatusNotFound}, scratch.ParseAPIError(http.StatusNotFound, []byte(`{"code":"NotFound","message":""}`))
	}

	return &scratch.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// waitingContext signals on waiting each time a caller selects on Done,
// which Document does once per caller while a fetch is in flight.
type waitingContext struct {
	context.Context
	waiting chan struct{}
}

func newWaitingContext(parent context.Context, capacity int) waitingContext {
	return waitingContext{Context: parent, waiting: make(chan struct{}, capacity)}
}

func (c waitingContext) Done() <-chan struct{} {
	c.waiting <- struct{}{}

	return c.Context.Done()
}

// awaitWaiters blocks until n callers are waiting on ctx.
func (c waitingContext) awaitWaiters(n int) {
	for range n {
		<-c.waiting
	}
}

func mustRecord(fields map[string]interface{}) scratch.Record {
	record, err := scratch.RecordFrom(fields)
	if err != nil {
		panic(err)
	}

	return record
}

// pagedTransport serves successive pages per path, then empty pages.
type pagedTransport struct {
	mu      sync.Mutex
	pages   map[string][]string
	served  map[string]int
	offsets []string
	limits  []string
}

func (p *pagedTransport) Do(ctx context.Context, req *scratch.Request) (*scratch.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.served == nil {
		p.served = make(map[string]int)
	}

	p.offsets = append(p.offsets, req.Query.Get("offset"))
	p.limits = append(p.limits, req.Query.Get("limit"))

	pages, ok := p.pages[req.Path]
	if !ok {
		return nil, scratch.ParseAPIError(http.StatusNotFound, nil)
	}

	index := p.served[req.Path]
	p.served[req.Path]++

	if index >= len(pages) {
		return &scratch.Response{StatusCode: http.StatusOK, Body: []byte(`[]`)}, nil
	}

	return &scratch.Response{StatusCode: http.StatusOK, Body: []byte(pages[index])}, nil
}
