package scratch

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Directory vends entity instances. The client facade implements it with its
// identity caches so that related entities found in listings resolve to the
// same instances as direct lookups.
type Directory interface {
	User(username string, seed Record) *User
	Project(id int64, seed Record) *Project
}

// EntityOption configures a User or Project.
type EntityOption func(*entityOptions)

type entityOptions struct {
	directory Directory
	pageSize  int
}

// WithDirectory sets the directory used to vend related entities. Without
// one, related entities are fresh unmanaged instances.
func WithDirectory(directory Directory) EntityOption {
	return func(o *entityOptions) {
		o.directory = directory
	}
}

// WithEntityPageSize sets the page size of the entity's collection streams.
func WithEntityPageSize(size int) EntityOption {
	return func(o *entityOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

func newEntityOptions(transport Transport, opts []EntityOption) entityOptions {
	options := entityOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.directory == nil {
		options.directory = &unmanagedDirectory{transport: transport, pageSize: options.pageSize}
	}

	return options
}

// unmanagedDirectory creates a new instance on every call.
type unmanagedDirectory struct {
	transport Transport
	pageSize  int
}

func (d *unmanagedDirectory) User(username string, seed Record) *User {
	return NewUser(d.transport, username, seed, WithDirectory(d), WithEntityPageSize(d.pageSize))
}

func (d *unmanagedDirectory) Project(id int64, seed Record) *Project {
	return NewProject(d.transport, id, seed, WithDirectory(d), WithEntityPageSize(d.pageSize))
}

// Profile is the "profile" object of a user record.
type Profile struct {
	ID      int64  `json:"id"      yaml:"id"`
	Status  string `json:"status"  yaml:"status"`
	Bio     string `json:"bio"     yaml:"bio"`
	Country string `json:"country" yaml:"country"`
}

type userHistory struct {
	Joined time.Time `json:"joined"`
}

// User is a Scratch website user.
type User struct {
	*Document

	username  string
	transport Transport
	options   entityOptions
}

// NewUser creates an unhydrated user seeded with the given fields.
func NewUser(transport Transport, username string, seed Record, opts ...EntityOption) *User {
	u := &User{
		username:  username,
		transport: transport,
		options:   newEntityOptions(transport, opts),
	}
	u.Document = NewDocument(transport, u.endpoint, seed)

	return u
}

// Key returns the username the user was created with.
func (u *User) Key() string {
	return u.username
}

func (u *User) endpoint() string {
	return "/users/" + url.PathEscape(u.username)
}

// ID returns the user's numeric ID.
func (u *User) ID(ctx context.Context) (int64, error) {
	return FieldAs[int64](ctx, u.Document, "id")
}

// Username returns the user's username as spelled by the API.
func (u *User) Username(ctx context.Context) (string, error) {
	return FieldAs[string](ctx, u.Document, "username")
}

// ScratchTeam reports whether the user is a Scratch Team member.
func (u *User) ScratchTeam(ctx context.Context) (bool, error) {
	return FieldAs[bool](ctx, u.Document, "scratchteam")
}

// JoinDate returns when the user joined.
func (u *User) JoinDate(ctx context.Context) (time.Time, error) {
	history, err := FieldAs[userHistory](ctx, u.Document, "history")
	if err != nil {
		return time.Time{}, err
	}

	return history.Joined, nil
}

// Profile returns the user's profile.
func (u *User) Profile(ctx context.Context) (Profile, error) {
	return FieldAs[Profile](ctx, u.Document, "profile")
}

// Status returns the user's "what I'm working on" text.
func (u *User) Status(ctx context.Context) (string, error) {
	profile, err := u.Profile(ctx)

	return profile.Status, err
}

// Bio returns the user's "about me" text.
func (u *User) Bio(ctx context.Context) (string, error) {
	profile, err := u.Profile(ctx)

	return profile.Bio, err
}

// Country returns the user's country.
func (u *User) Country(ctx context.Context) (string, error) {
	profile, err := u.Profile(ctx)

	return profile.Country, err
}

// Following streams the users this user follows, newest first.
func (u *User) Following(ctx context.Context) *Stream[*User] {
	return u.userStream(ctx, "following")
}

// Followers streams the users following this user, newest first.
func (u *User) Followers(ctx context.Context) *Stream[*User] {
	return u.userStream(ctx, "followers")
}

// SharedProjects streams the projects the user has shared, oldest first.
func (u *User) SharedProjects(ctx context.Context) *Stream[*Project] {
	return u.projectStream(ctx, "projects")
}

// Favorites streams the projects the user has favorited.
func (u *User) Favorites(ctx context.Context) *Stream[*Project] {
	return u.projectStream(ctx, "favorites")
}

func (u *User) userStream(ctx context.Context, collection string) *Stream[*User] {
	pages := APIPages(u.transport, u.endpoint()+"/"+collection)

	return NewStream(ctx, TransformPages(pages, userFromListing(u.options.directory)), u.streamOptions()...)
}

func (u *User) projectStream(ctx context.Context, collection string) *Stream[*Project] {
	pages := APIPages(u.transport, u.endpoint()+"/"+collection)

	return NewStream(ctx, TransformPages(pages, projectFromListing(u.options.directory)), u.streamOptions()...)
}

func (u *User) streamOptions() []StreamOption {
	return []StreamOption{WithPageSize(u.options.pageSize)}
}

// userFromListing resolves a listing record carrying a username.
func userFromListing(directory Directory) func(Record) (*User, error) {
	return func(record Record) (*User, error) {
		var username string

		err := record.Lookup("username").Decode(&username)
		if err != nil {
			return nil, err
		}

		if username == "" {
			return nil, fmt.Errorf("%w: empty username in listing", ErrInvalidUsername)
		}

		return directory.User(username, record), nil
	}
}
