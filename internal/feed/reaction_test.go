package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsApply_Added(t *testing.T) {
	c := NewCounts()

	require.NoError(t, c.Apply(ActionAdded, ReactionLove))

	assert.Equal(t, 1, c.Count(ReactionLove))
	assert.Equal(t, 1, c.Total)
	assert.Equal(t, ReactionLove, c.Own)
}

func TestCountsApply_Removed(t *testing.T) {
	c := NewCounts()
	require.NoError(t, c.Apply(ActionAdded, ReactionHaha))

	require.NoError(t, c.Apply(ActionRemoved, ""))

	assert.Equal(t, 0, c.Count(ReactionHaha))
	assert.Equal(t, 0, c.Total)
	assert.Empty(t, c.Own)
}

func TestCountsApply_Changed(t *testing.T) {
	c := NewCounts()
	require.NoError(t, c.Apply(ActionAdded, ReactionLike))

	require.NoError(t, c.Apply(ActionChanged, ReactionAngry))

	assert.Equal(t, 0, c.Count(ReactionLike))
	assert.Equal(t, 1, c.Count(ReactionAngry))
	assert.Equal(t, 1, c.Total, "changed must leave the total untouched")
	assert.Equal(t, ReactionAngry, c.Own)
}

func TestCountsApply_ChangedUsesServerReactionAsPrevious(t *testing.T) {
	// No local override: the previous reaction came down with the post.
	c := NewCounts()
	c.ByKind[ReactionWow] = 3
	c.Total = 3
	c.Own = ReactionWow

	require.NoError(t, c.Apply(ActionChanged, ReactionSad))

	assert.Equal(t, 2, c.Count(ReactionWow))
	assert.Equal(t, 1, c.Count(ReactionSad))
	assert.Equal(t, 3, c.Total)
}

func TestCountsApply_FloorsAtZero(t *testing.T) {
	c := NewCounts()
	c.Own = ReactionLike // counter already zero: decrement must clamp

	require.NoError(t, c.Apply(ActionRemoved, ""))

	assert.Equal(t, 0, c.Count(ReactionLike))
	assert.Equal(t, 0, c.Total)
}

func TestCountsApply_RejectsUnknownAction(t *testing.T) {
	c := NewCounts()
	assert.Error(t, c.Apply(Action("toggled"), ReactionLike))
	assert.Error(t, c.Apply(ActionAdded, ReactionKind("meh")))
}

// Property: for any sequence of actions, Total equals the sum of the six
// per-kind counters and no counter goes negative.
func TestCountsApply_SumInvariant(t *testing.T) {
	steps := []struct {
		action Action
		kind   ReactionKind
	}{
		{ActionAdded, ReactionLike},
		{ActionChanged, ReactionLove},
		{ActionChanged, ReactionWow},
		{ActionRemoved, ""},
		{ActionAdded, ReactionSad},
		{ActionChanged, ReactionSad},
		{ActionRemoved, ""},
		{ActionRemoved, ""}, // double remove must clamp, not underflow
		{ActionAdded, ReactionAngry},
	}

	c := NewCounts()
	for i, step := range steps {
		require.NoError(t, c.Apply(step.action, step.kind), "step %d", i)
		assert.Equal(t, c.Sum(), c.Total, "step %d: total diverged from sum", i)
		for _, k := range ReactionKinds {
			assert.GreaterOrEqual(t, c.Count(k), 0, "step %d: %s negative", i, k)
		}
	}
}

func TestReactionKindMeta(t *testing.T) {
	for _, k := range ReactionKinds {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.Emoji())
		assert.NotEmpty(t, k.Label())
		assert.NotEmpty(t, k.Color())
	}
	assert.False(t, ReactionKind("dislike").Valid())
}
