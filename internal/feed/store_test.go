package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regular(id, userID, name, caption string) *RegularPost {
	return &RegularPost{
		ID:        id,
		User:      User{ID: userID, Name: name},
		Caption:   caption,
		Reactions: NewCounts(),
	}
}

func shared(id, sharerID, sharerName, caption string, orig OriginalPost) *SharedPost {
	return &SharedPost{
		ID:        id,
		Sharer:    User{ID: sharerID, Name: sharerName},
		Caption:   caption,
		Original:  orig,
		Reactions: NewCounts(),
	}
}

func TestStoreReplace_PreservesOrder(t *testing.T) {
	s := NewStore()
	s.Replace([]Post{
		regular("3", "u1", "A", "third"),
		shared("3", "u2", "B", "also id 3", OriginalPost{ID: "3", Author: User{ID: "u1", Name: "A"}}),
		regular("1", "u1", "A", "first"),
	})

	list := s.List()
	require.Len(t, list, 3, "regular 3 and shared 3 are distinct keys")
	assert.Equal(t, KindRegular, list[0].Key().Kind)
	assert.Equal(t, KindShared, list[1].Key().Kind)
	assert.Equal(t, "1", list[2].Key().ID)
}

func TestStoreUpdate_MissingKeyIsDropped(t *testing.T) {
	s := NewStore()
	called := false
	ok := s.Update(PostKey{Kind: KindRegular, ID: "404"}, func(Post) { called = true })
	assert.False(t, ok)
	assert.False(t, called)
}

func TestStoreRemoveAndAdd(t *testing.T) {
	s := NewStore()
	p := regular("1", "u1", "A", "x")
	s.Replace([]Post{p, regular("2", "u1", "A", "y")})

	require.True(t, s.Remove(p.Key()))
	assert.False(t, s.Remove(p.Key()), "second remove is a no-op")
	assert.Equal(t, 1, s.Len())

	s.Add(p)
	s.Add(p) // duplicate add ignored
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(p.Key())
	assert.True(t, ok)
}

// All subscribed surfaces observe the same post value after a single
// mutation; there is no per-surface copy to fall out of sync.
func TestStoreSubscribers_SeeOneMutationEverywhere(t *testing.T) {
	s := NewStore()
	p := regular("1", "u1", "A", "x")
	s.Replace([]Post{p})
	key := p.Key()

	readCount := func() int {
		post, ok := s.Get(key)
		require.True(t, ok)
		return post.Counts().Total
	}

	var feedView, detailView int
	unsubFeed := s.Subscribe(func(ev Event) {
		if ev.Type == EventUpdated && ev.Key == key {
			feedView = readCount()
		}
	})
	defer unsubFeed()
	unsubDetail := s.Subscribe(func(ev Event) {
		if ev.Type == EventUpdated && ev.Key == key {
			detailView = readCount()
		}
	})
	defer unsubDetail()

	s.Update(key, func(post Post) {
		require.NoError(t, post.Counts().Apply(ActionAdded, ReactionLike))
	})

	assert.Equal(t, 1, feedView)
	assert.Equal(t, 1, detailView)
	assert.Equal(t, feedView, detailView, "surfaces must never visibly disagree")
}

func TestStoreSubscribe_Unsubscribe(t *testing.T) {
	s := NewStore()
	events := 0
	cancel := s.Subscribe(func(Event) { events++ })

	s.Replace([]Post{regular("1", "u1", "A", "x")})
	require.Equal(t, 1, events)

	cancel()
	s.Replace(nil)
	assert.Equal(t, 1, events)
}
