// Package images resolves opaque image references into displayable URLs.
//
// A reference is either a Google Drive file id or a legacy local-upload
// filename; the upload-type tag on the reference picks the construction.
package images

import (
	"net/url"
	"strings"

	"github.com/campuslink/campusfeed/internal/feed"
)

// Defaults for the two URL constructions.
const (
	// DefaultDriveBase is the Drive thumbnail endpoint.
	DefaultDriveBase = "https://drive.google.com/thumbnail"

	// DefaultDriveSize is the sz parameter requested from Drive.
	DefaultDriveSize = "w1000"

	// DefaultUploadPath is where legacy local uploads are served from.
	DefaultUploadPath = "/uploads/"
)

// Resolver turns image references into URLs. The zero value resolves with
// the defaults.
type Resolver struct {
	// DriveBase overrides the Drive thumbnail endpoint.
	DriveBase string

	// DriveSize overrides the requested thumbnail size.
	DriveSize string

	// UploadPath overrides the local upload path prefix.
	UploadPath string
}

// Resolve constructs the displayable URL for one reference. Blank
// references resolve to an empty string so callers can skip them.
func (r Resolver) Resolve(ref feed.ImageRef) string {
	token := strings.TrimSpace(ref.Ref)
	if token == "" {
		return ""
	}
	switch ref.Source {
	case feed.SourceGoogleDrive:
		base := r.DriveBase
		if base == "" {
			base = DefaultDriveBase
		}
		size := r.DriveSize
		if size == "" {
			size = DefaultDriveSize
		}
		return base + "?id=" + url.QueryEscape(token) + "&sz=" + url.QueryEscape(size)
	default:
		prefix := r.UploadPath
		if prefix == "" {
			prefix = DefaultUploadPath
		}
		return prefix + url.PathEscape(token)
	}
}

// ResolveAll resolves a post's image set in order, dropping blanks.
func (r Resolver) ResolveAll(refs []feed.ImageRef) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u := r.Resolve(ref); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
