package feed

import "strings"

// Filter narrows a post collection for display. The zero value passes
// everything through.
type Filter struct {
	// Query is a free-text search term. Empty or whitespace-only means
	// unfiltered.
	Query string

	// ProfileUserID scopes the view to one author's posts. For shared posts
	// the match is against the sharer, never the original author.
	ProfileUserID string
}

// Apply returns the posts passing the filter, preserving input order.
func (f Filter) Apply(posts []Post) []Post {
	query := strings.TrimSpace(f.Query)
	if query == "" && f.ProfileUserID == "" {
		return posts
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if f.ProfileUserID != "" && p.Owner().ID != f.ProfileUserID {
			continue
		}
		if query != "" && !p.Matches(query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
