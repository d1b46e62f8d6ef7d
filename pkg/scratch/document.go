package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EndpointFunc resolves the resource path of a document from its identity.
// It must be pure: no I/O, same result on every call.
type EndpointFunc func() string

// DocumentState is the hydration state of a Document.
type DocumentState int

const (
	// Unhydrated is the initial state, whatever the number of seeded fields.
	Unhydrated DocumentState = iota
	// Hydrated is terminal: the full record has been fetched once.
	Hydrated
)

// String returns the state name.
func (s DocumentState) String() string {
	if s == Hydrated {
		return "hydrated"
	}

	return "unhydrated"
}

const fetchKey = "fetch"

// Document is a lazily hydrated representation of one remote entity.
//
// A document starts with zero or more seed fields. Looking up a field it
// already knows never performs I/O. The first lookup that misses fetches the
// whole record once; concurrent misses share that single request. A failed
// fetch leaves the document unhydrated so that a later lookup retries.
type Document struct {
	transport Transport
	endpoint  EndpointFunc
	group     singleflight.Group

	mu       sync.RWMutex
	fields   map[string]json.RawMessage
	hydrated bool
}

// NewDocument creates a document seeded with the given fields.
func NewDocument(transport Transport, endpoint EndpointFunc, seed Record) *Document {
	fields := maps.Clone(seed.fields)
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}

	return &Document{
		transport: transport,
		endpoint:  endpoint,
		fields:    fields,
	}
}

// Endpoint returns the resource path of the document.
func (d *Document) Endpoint() (string, error) {
	if d.endpoint == nil {
		return "", ErrUnresolvedEndpoint
	}

	return d.endpoint(), nil
}

// State returns the hydration state.
func (d *Document) State() DocumentState {
	if d.Hydrated() {
		return Hydrated
	}

	return Unhydrated
}

// Hydrated reports whether the full record has been fetched.
func (d *Document) Hydrated() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.hydrated
}

// Snapshot returns the fields currently known.
func (d *Document) Snapshot() Record {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return NewRecord(d.fields)
}

// Field returns the value of name, hydrating the document first when the
// field is not known yet.
func (d *Document) Field(ctx context.Context, name string) (Field, error) {
	if field, ok := d.lookup(name); ok {
		return field, nil
	}

	err := d.Hydrate(ctx)
	if err != nil {
		return Field{name: name, state: FieldUnknown}, err
	}

	field, _ := d.lookup(name)

	return field, nil
}

// Hydrate fetches the full record unless the document is already hydrated.
func (d *Document) Hydrate(ctx context.Context) error {
	if d.Hydrated() {
		return nil
	}

	return d.fetch(ctx, false)
}

// Reload fetches the full record again and replaces every known field. The
// request bypasses any response cache.
func (d *Document) Reload(ctx context.Context) error {
	return d.fetch(ctx, true)
}

// SeedUnknown adds the fields of seed the document does not know yet. It is
// a no-op once the document is hydrated. It returns the number of fields added.
func (d *Document) SeedUnknown(seed Record) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hydrated {
		return 0
	}

	added := 0

	for name, raw := range seed.fields {
		if _, ok := d.fields[name]; ok {
			continue
		}

		d.fields[name] = raw
		added++
	}

	return added
}

func (d *Document) lookup(name string) (Field, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if raw, ok := d.fields[name]; ok {
		return Field{name: name, state: FieldKnown, raw: raw}, true
	}

	if d.hydrated {
		return Field{name: name, state: FieldAbsent}, true
	}

	return Field{}, false
}

func (d *Document) fetch(ctx context.Context, reload bool) error {
	endpoint, err := d.Endpoint()
	if err != nil {
		return err
	}

	if d.transport == nil {
		return ErrTransportRequired
	}

	// The shared fetch outlives any single caller; each caller gives up on
	// its own context below.
	fetchCtx := context.WithoutCancel(ctx)

	results := d.group.DoChan(fetchKey, func() (interface{}, error) {
		if !reload && d.Hydrated() {
			return nil, nil
		}

		req := &Request{Method: http.MethodGet, Path: endpoint}
		if reload {
			req.Metadata = map[string]interface{}{MetadataNoCache: true}
		}

		resp, err := d.transport.Do(fetchCtx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, endpoint, err)
		}

		record, err := ParseRecord(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrFetchFailed, endpoint, err)
		}

		d.mu.Lock()
		d.fields = record.fields
		if d.fields == nil {
			d.fields = make(map[string]json.RawMessage)
		}
		d.hydrated = true
		d.mu.Unlock()

		return nil, nil
	})

	select {
	case result := <-results:
		return result.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, endpoint, ctx.Err())
	}
}

// FieldAs looks up name on doc and decodes it into a T. An absent field
// yields the zero value of T.
func FieldAs[T any](ctx context.Context, doc *Document, name string) (T, error) {
	var value T

	field, err := doc.Field(ctx, name)
	if err != nil {
		return value, err
	}

	err = field.Decode(&value)
	if err != nil && !errors.Is(err, ErrFieldAbsent) {
		return value, err
	}

	return value, nil
}
