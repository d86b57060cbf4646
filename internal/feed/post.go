// Package feed holds the post data model and the normalized post store for a
// feed view.
//
// Posts come in exactly two variants, RegularPost and SharedPost, resolved
// once when gateway JSON is decoded. Downstream code never inspects string
// discriminants; it works through the Post interface or type-switches on the
// two concrete types.
package feed

import (
	"strings"
	"time"
)

// Kind discriminates the two post variants.
type Kind string

const (
	KindRegular Kind = "regular"
	KindShared  Kind = "shared"
)

// PostKey uniquely identifies a post within a feed. Regular and shared posts
// have independent id spaces, so the kind is part of the key.
type PostKey struct {
	Kind Kind
	ID   string
}

func (k PostKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// User identifies a post author or sharer.
type User struct {
	ID   string
	Name string
}

// ImageSource tags how an image reference is stored upstream.
type ImageSource string

const (
	SourceGoogleDrive ImageSource = "google_drive"
	SourceLocal       ImageSource = "local"
)

// ImageRef is an opaque image token plus its upload-type tag. Resolution to a
// displayable URL happens in the images package.
type ImageRef struct {
	Ref    string
	Source ImageSource
}

// Post is the common surface of the two post variants.
//
// Owner returns the effective author for profile scoping: the creator for a
// regular post, the sharer for a shared post. A shared post belongs to the
// sharer's profile, not the original author's.
type Post interface {
	Key() PostKey
	Owner() User
	Text() string
	Posted() time.Time
	Counts() *Counts
	Matches(query string) bool
}

// RegularPost is a post authored directly by a user.
type RegularPost struct {
	ID           string
	User         User
	Caption      string
	CreatedAt    time.Time
	Images       []ImageRef
	Reactions    Counts
	ShareCount   int
	ApproverName string
}

func (p *RegularPost) Key() PostKey      { return PostKey{Kind: KindRegular, ID: p.ID} }
func (p *RegularPost) Owner() User       { return p.User }
func (p *RegularPost) Text() string      { return p.Caption }
func (p *RegularPost) Posted() time.Time { return p.CreatedAt }
func (p *RegularPost) Counts() *Counts   { return &p.Reactions }

// Matches reports whether the post matches a free-text query. The query is
// tested against the author name and the caption; any hit includes the post.
func (p *RegularPost) Matches(query string) bool {
	return containsFold(p.User.Name, query) || containsFold(p.Caption, query)
}

// OriginalPost is the snapshot of the post a share wraps. The snapshot is
// taken at share time and is independent of the original's later edits.
type OriginalPost struct {
	ID        string
	Author    User
	Caption   string
	CreatedAt time.Time
	Images    []ImageRef
}

// SharedPost wraps an original post snapshot with the sharer's own caption
// and an independent reaction set scoped to the share itself.
type SharedPost struct {
	ID         string
	Sharer     User
	Caption    string
	CreatedAt  time.Time
	Original   OriginalPost
	Reactions  Counts
	ShareCount int
}

func (p *SharedPost) Key() PostKey      { return PostKey{Kind: KindShared, ID: p.ID} }
func (p *SharedPost) Owner() User       { return p.Sharer }
func (p *SharedPost) Text() string      { return p.Caption }
func (p *SharedPost) Posted() time.Time { return p.CreatedAt }
func (p *SharedPost) Counts() *Counts   { return &p.Reactions }

// Matches tests the sharer name, the share caption, the original caption and
// the original author's name.
func (p *SharedPost) Matches(query string) bool {
	return containsFold(p.Sharer.Name, query) ||
		containsFold(p.Caption, query) ||
		containsFold(p.Original.Caption, query) ||
		containsFold(p.Original.Author.Name, query)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
