package reaction

import (
	"sort"
	"strconv"

	"github.com/campuslink/campusfeed/internal/feed"
)

// maxSummaryKinds is how many representative emoji a post card shows.
const maxSummaryKinds = 3

// Summary is the reaction rollup rendered next to a post's action row.
type Summary struct {
	// Kinds holds up to three representative reaction kinds: the viewer's
	// own reaction first when present, then the rest by descending count,
	// ties broken by display order.
	Kinds []feed.ReactionKind

	// Total is the post's total reaction count.
	Total int
}

// Text renders the numeric part of the summary.
func (s Summary) Text() string {
	return strconv.Itoa(s.Total)
}

// Summarize derives a post's reaction summary. The second return is false
// when the total is zero: a zero total suppresses the summary entirely,
// never rendering "0".
func Summarize(c *feed.Counts) (Summary, bool) {
	if c == nil || c.Total <= 0 {
		return Summary{}, false
	}

	ranked := make([]feed.ReactionKind, 0, len(feed.ReactionKinds))
	for _, k := range feed.ReactionKinds {
		if k == c.Own {
			continue
		}
		if c.Count(k) > 0 {
			ranked = append(ranked, k)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.Count(ranked[i]) > c.Count(ranked[j])
	})

	kinds := make([]feed.ReactionKind, 0, maxSummaryKinds)
	if c.Own.Valid() {
		kinds = append(kinds, c.Own)
	}
	for _, k := range ranked {
		if len(kinds) == maxSummaryKinds {
			break
		}
		kinds = append(kinds, k)
	}

	return Summary{Kinds: kinds, Total: c.Total}, true
}

// Button is the default reaction affordance on a post card.
type Button struct {
	Emoji string
	Label string
	Color string
}

// neutral is the affordance shown when the viewer has no reaction set.
var neutral = Button{Emoji: "👍", Label: "Like", Color: "#65676b"}

// ButtonFor derives the reaction button for the viewer's current state.
func ButtonFor(c *feed.Counts) Button {
	if c == nil || !c.Own.Valid() {
		return neutral
	}
	return Button{Emoji: c.Own.Emoji(), Label: c.Own.Label(), Color: c.Own.Color()}
}
