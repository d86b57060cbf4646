package feed

import "fmt"

// ReactionKind is one of the six reactions a user can leave on a post.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionHaha  ReactionKind = "haha"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
	ReactionWow   ReactionKind = "wow"
)

// ReactionKinds lists all kinds in display order. Summary derivation uses
// this order to break count ties deterministically.
var ReactionKinds = []ReactionKind{
	ReactionLike, ReactionLove, ReactionHaha,
	ReactionSad, ReactionAngry, ReactionWow,
}

var reactionMeta = map[ReactionKind]struct {
	emoji, label, color string
}{
	ReactionLike:  {"👍", "Like", "#2078f4"},
	ReactionLove:  {"❤️", "Love", "#f33e58"},
	ReactionHaha:  {"😂", "Haha", "#f7b125"},
	ReactionSad:   {"😢", "Sad", "#f7b125"},
	ReactionAngry: {"😡", "Angry", "#e9710f"},
	ReactionWow:   {"😮", "Wow", "#f7b125"},
}

// Valid reports whether k is one of the six reaction kinds.
func (k ReactionKind) Valid() bool {
	_, ok := reactionMeta[k]
	return ok
}

func (k ReactionKind) Emoji() string { return reactionMeta[k].emoji }
func (k ReactionKind) Label() string { return reactionMeta[k].label }
func (k ReactionKind) Color() string { return reactionMeta[k].color }

// Action is the gateway's discriminator for what an add-reaction call
// actually did server-side.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionChanged Action = "changed"
)

// Counts is the aggregate reaction state of one post as seen by one viewer:
// the six per-kind counters, the running total, and the viewer's own
// reaction ("" when none).
type Counts struct {
	ByKind map[ReactionKind]int
	Total  int
	Own    ReactionKind
}

// NewCounts returns an empty count set with all six kinds present.
func NewCounts() Counts {
	by := make(map[ReactionKind]int, len(ReactionKinds))
	for _, k := range ReactionKinds {
		by[k] = 0
	}
	return Counts{ByKind: by}
}

// Count returns the counter for one kind.
func (c *Counts) Count(k ReactionKind) int {
	if c.ByKind == nil {
		return 0
	}
	return c.ByKind[k]
}

// Sum adds up the six per-kind counters. The reconciliation invariant is
// Sum() == Total at all times.
func (c *Counts) Sum() int {
	total := 0
	for _, k := range ReactionKinds {
		total += c.Count(k)
	}
	return total
}

// Apply merges a gateway reaction response into the local counters without a
// refetch. The previous reaction is read from Own. All decrements are
// floored at zero.
//
//   - added: Own becomes next; next's counter and Total increment.
//   - removed: Own clears; the previous counter and Total decrement.
//   - changed: previous counter decrements, next's increments; Total is
//     untouched.
func (c *Counts) Apply(action Action, next ReactionKind) error {
	if c.ByKind == nil {
		c.ByKind = NewCounts().ByKind
	}
	prev := c.Own
	switch action {
	case ActionAdded:
		if !next.Valid() {
			return fmt.Errorf("apply %s: invalid reaction kind %q", action, next)
		}
		c.ByKind[next]++
		c.Total++
		c.Own = next
	case ActionRemoved:
		if prev.Valid() {
			c.decrement(prev)
		}
		if c.Total > 0 {
			c.Total--
		}
		c.Own = ""
	case ActionChanged:
		if !next.Valid() {
			return fmt.Errorf("apply %s: invalid reaction kind %q", action, next)
		}
		if prev.Valid() {
			c.decrement(prev)
		}
		c.ByKind[next]++
		c.Own = next
	default:
		return fmt.Errorf("unknown reaction action %q", action)
	}
	return nil
}

func (c *Counts) decrement(k ReactionKind) {
	if c.ByKind[k] > 0 {
		c.ByKind[k]--
	}
}
