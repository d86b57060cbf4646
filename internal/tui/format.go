package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/reaction"
)

// FormatAge formats how long ago a post was created, relative to now.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}

// FormatReactions renders the condensed reaction summary for a post, or an
// empty string when the post has no reactions to show.
func FormatReactions(c *feed.Counts) string {
	s, ok := reaction.Summarize(c)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, k := range s.Kinds {
		b.WriteString(k.Emoji())
	}
	b.WriteString(" ")
	b.WriteString(s.Text())
	return b.String()
}

// FormatCommentCount formats a comment count line for the list view.
func FormatCommentCount(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", n)
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. Newlines collapse to spaces so list rows stay single
// line.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
