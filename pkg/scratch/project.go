package scratch

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Stats holds the counters of a project.
type Stats struct {
	Views     int64 `json:"views"     yaml:"views"`
	Loves     int64 `json:"loves"     yaml:"loves"`
	Favorites int64 `json:"favorites" yaml:"favorites"`
	Remixes   int64 `json:"remixes"   yaml:"remixes"`
}

// History holds the timestamps of a project.
type History struct {
	Created  time.Time `json:"created"  yaml:"created"`
	Modified time.Time `json:"modified" yaml:"modified"`
	Shared   time.Time `json:"shared"   yaml:"shared"`
}

// Project is a Scratch project.
type Project struct {
	*Document

	id        int64
	transport Transport
	options   entityOptions
}

// NewProject creates an unhydrated project seeded with the given fields.
func NewProject(transport Transport, id int64, seed Record, opts ...EntityOption) *Project {
	p := &Project{
		id:        id,
		transport: transport,
		options:   newEntityOptions(transport, opts),
	}
	p.Document = NewDocument(transport, p.endpoint, seed)

	return p
}

// Key returns the ID the project was created with.
func (p *Project) Key() int64 {
	return p.id
}

func (p *Project) endpoint() string {
	return "/projects/" + strconv.FormatInt(p.id, 10)
}

// ID returns the project's ID as reported by the API.
func (p *Project) ID(ctx context.Context) (int64, error) {
	return FieldAs[int64](ctx, p.Document, "id")
}

// Title returns the project's title.
func (p *Project) Title(ctx context.Context) (string, error) {
	return FieldAs[string](ctx, p.Document, "title")
}

// Description returns the project's "notes and credits".
func (p *Project) Description(ctx context.Context) (string, error) {
	return FieldAs[string](ctx, p.Document, "description")
}

// Instructions returns the project's instructions.
func (p *Project) Instructions(ctx context.Context) (string, error) {
	return FieldAs[string](ctx, p.Document, "instructions")
}

// Stats returns the project's counters.
func (p *Project) Stats(ctx context.Context) (Stats, error) {
	return FieldAs[Stats](ctx, p.Document, "stats")
}

// History returns the project's timestamps.
func (p *Project) History(ctx context.Context) (History, error) {
	return FieldAs[History](ctx, p.Document, "history")
}

// AuthorName returns the username of the project's author.
func (p *Project) AuthorName(ctx context.Context) (string, error) {
	author, err := FieldAs[Record](ctx, p.Document, "author")
	if err != nil {
		return "", err
	}

	var username string

	err = author.Lookup("username").Decode(&username)
	if err != nil {
		return "", err
	}

	return username, nil
}

// Author returns the project's author, seeded with the author object of the
// project record.
func (p *Project) Author(ctx context.Context) (*User, error) {
	author, err := FieldAs[Record](ctx, p.Document, "author")
	if err != nil {
		return nil, err
	}

	user, err := userFromListing(p.options.directory)(author)
	if err != nil {
		return nil, fmt.Errorf("resolving author of project %d: %w", p.id, err)
	}

	return user, nil
}

// Remixes streams the remixes of the project.
func (p *Project) Remixes(ctx context.Context) *Stream[*Project] {
	pages := APIPages(p.transport, p.endpoint()+"/remixes")

	return NewStream(ctx, TransformPages(pages, projectFromListing(p.options.directory)), WithPageSize(p.options.pageSize))
}

// projectFromListing resolves a listing record carrying a project ID.
func projectFromListing(directory Directory) func(Record) (*Project, error) {
	return func(record Record) (*Project, error) {
		var id int64

		err := record.Lookup("id").Decode(&id)
		if err != nil {
			return nil, err
		}

		if id <= 0 {
			return nil, fmt.Errorf("%w: %d in listing", ErrInvalidProjectID, id)
		}

		return directory.Project(id, record), nil
	}
}
