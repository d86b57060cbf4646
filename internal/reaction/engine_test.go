package reaction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

// stubClient implements gateway.Client with overridable reaction behavior.
type stubClient struct {
	gateway.Client

	reactCalls  int
	lastKind    feed.ReactionKind
	reactAction feed.Action
	reactErr    error
}

func (s *stubClient) AddReaction(_ context.Context, _ string, _ feed.PostKey, kind feed.ReactionKind) (feed.Action, error) {
	s.reactCalls++
	s.lastKind = kind
	return s.reactAction, s.reactErr
}

func seededStore(t *testing.T) (*feed.Store, feed.PostKey) {
	t.Helper()
	store := feed.NewStore()
	p := &feed.RegularPost{
		ID:        "41",
		User:      feed.User{ID: "u7", Name: "Alice"},
		Caption:   "hello",
		Reactions: feed.NewCounts(),
	}
	store.Replace([]feed.Post{p})
	return store, p.Key()
}

func TestNewEngine_Validation(t *testing.T) {
	store := feed.NewStore()
	client := &stubClient{}

	_, err := NewEngine(nil, client, "u1", nil)
	require.Error(t, err)
	_, err = NewEngine(store, nil, "u1", nil)
	require.Error(t, err)

	e, err := NewEngine(store, client, "u1", nil)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestReact_SignedOutIsSilentNoop(t *testing.T) {
	store, key := seededStore(t)
	client := &stubClient{reactAction: feed.ActionAdded}
	e, err := NewEngine(store, client, "", nil)
	require.NoError(t, err)

	require.NoError(t, e.React(context.Background(), key, feed.ReactionLike))

	assert.Zero(t, client.reactCalls, "no gateway call without a signed-in user")
	post, _ := store.Get(key)
	assert.Zero(t, post.Counts().Total)
}

func TestReact_InvalidKind(t *testing.T) {
	store, key := seededStore(t)
	e, err := NewEngine(store, &stubClient{}, "u1", nil)
	require.NoError(t, err)

	err = e.React(context.Background(), key, feed.ReactionKind("meh"))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestReact_MergesServerAction(t *testing.T) {
	store, key := seededStore(t)
	client := &stubClient{reactAction: feed.ActionAdded}
	var updated []feed.PostKey
	e, err := NewEngine(store, client, "u1", nil,
		WithOnUpdated(func(k feed.PostKey) { updated = append(updated, k) }))
	require.NoError(t, err)

	require.NoError(t, e.React(context.Background(), key, feed.ReactionLove))

	post, _ := store.Get(key)
	assert.Equal(t, 1, post.Counts().Count(feed.ReactionLove))
	assert.Equal(t, 1, post.Counts().Total)
	assert.Equal(t, feed.ReactionLove, post.Counts().Own)
	assert.Equal(t, []feed.PostKey{key}, updated)
}

func TestReact_ChangedKeepsTotal(t *testing.T) {
	store, key := seededStore(t)
	store.Update(key, func(p feed.Post) {
		require.NoError(t, p.Counts().Apply(feed.ActionAdded, feed.ReactionLike))
	})

	client := &stubClient{reactAction: feed.ActionChanged}
	e, err := NewEngine(store, client, "u1", nil)
	require.NoError(t, err)

	require.NoError(t, e.React(context.Background(), key, feed.ReactionWow))

	post, _ := store.Get(key)
	assert.Equal(t, 0, post.Counts().Count(feed.ReactionLike))
	assert.Equal(t, 1, post.Counts().Count(feed.ReactionWow))
	assert.Equal(t, 1, post.Counts().Total)
}

func TestReact_GatewayFailureLeavesStateUnchanged(t *testing.T) {
	store, key := seededStore(t)
	client := &stubClient{reactErr: errors.New("backend down")}
	e, err := NewEngine(store, client, "u1", nil)
	require.NoError(t, err)

	err = e.React(context.Background(), key, feed.ReactionLike)
	require.Error(t, err)

	post, _ := store.Get(key)
	assert.Zero(t, post.Counts().Total)
	assert.Empty(t, post.Counts().Own)
}

func TestReact_PostGoneWhileInFlight(t *testing.T) {
	store, key := seededStore(t)
	client := &stubClient{reactAction: feed.ActionAdded}
	e, err := NewEngine(store, client, "u1", nil)
	require.NoError(t, err)

	store.Remove(key)

	// Tolerated race: the response handler drops the merge, no error.
	assert.NoError(t, e.React(context.Background(), key, feed.ReactionLike))
}

func TestReact_ClosesOpenPicker(t *testing.T) {
	store, key := seededStore(t)
	pickers := NewPickerSet(Delays{}, nil)
	pickers.entries[key] = &pickerEntry{state: PickerHover}

	client := &stubClient{reactAction: feed.ActionAdded}
	e, err := NewEngine(store, client, "u1", nil, WithPickerSet(pickers))
	require.NoError(t, err)

	require.NoError(t, e.React(context.Background(), key, feed.ReactionHaha))
	assert.Equal(t, PickerClosed, pickers.State(key))
}
