package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

// stubClient records lifecycle calls and can fail or block them.
type stubClient struct {
	gateway.Client

	mu       sync.Mutex
	captions []string
	statuses []gateway.Status
	restores []feed.PostKey
	deletes  []feed.PostKey
	shares   []string

	err     error
	deleteC chan struct{}
}

func (s *stubClient) UpdateCaption(_ context.Context, _ string, _ feed.PostKey, caption string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captions = append(s.captions, caption)
	return nil
}

func (s *stubClient) UpdateStatus(_ context.Context, _ string, _ feed.PostKey, status gateway.Status) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubClient) RestorePost(_ context.Context, _ string, key feed.PostKey) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restores = append(s.restores, key)
	return nil
}

func (s *stubClient) DeletePost(_ context.Context, _ string, key feed.PostKey, _ gateway.Status) error {
	if s.deleteC != nil {
		<-s.deleteC
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *stubClient) SharePost(_ context.Context, _, postID, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares = append(s.shares, postID)
	return nil
}

func newFixture(t *testing.T, userID string) (*Controller, *stubClient, *feed.Store, feed.PostKey, feed.PostKey) {
	t.Helper()
	store := feed.NewStore()
	mine := &feed.RegularPost{ID: "1", User: feed.User{ID: "u1", Name: "Alice"}, Caption: "mine", Reactions: feed.NewCounts()}
	theirs := &feed.SharedPost{
		ID:      "2",
		Sharer:  feed.User{ID: "u2", Name: "Bola"},
		Caption: "check this out",
		Original: feed.OriginalPost{
			ID:      "7",
			Author:  feed.User{ID: "u3", Name: "Chidi"},
			Caption: "original",
		},
		Reactions: feed.NewCounts(),
	}
	store.Replace([]feed.Post{mine, theirs})

	client := &stubClient{}
	c, err := NewController(store, client, userID, nil)
	require.NoError(t, err)
	return c, client, store, mine.Key(), theirs.Key()
}

func TestCanManage(t *testing.T) {
	c, _, store, mine, theirs := newFixture(t, "u1")
	mp, _ := store.Get(mine)
	tp, _ := store.Get(theirs)

	assert.True(t, c.CanManage(mp))
	assert.False(t, c.CanManage(tp), "sharer owns a shared post, not the viewer")

	anon, _, store2, key, _ := newFixture(t, "")
	p, _ := store2.Get(key)
	assert.False(t, anon.CanManage(p))
}

func TestEdit_DraftRoundTrip(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	require.NoError(t, c.BeginEdit(mine))
	d, ok := c.Draft(mine)
	require.True(t, ok)
	assert.Equal(t, "mine", d, "draft seeds from the current caption")

	require.NoError(t, c.SetDraft(mine, "mine, revised"))
	require.NoError(t, c.SaveEdit(context.Background(), mine))

	assert.Equal(t, []string{"mine, revised"}, client.captions)
	p, _ := store.Get(mine)
	assert.Equal(t, "mine, revised", p.Text())
	_, ok = c.Draft(mine)
	assert.False(t, ok, "save closes the draft")
}

func TestEdit_CancelSkipsNetwork(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	require.NoError(t, c.BeginEdit(mine))
	require.NoError(t, c.SetDraft(mine, "scrapped"))
	c.CancelEdit(mine)

	assert.Empty(t, client.captions)
	p, _ := store.Get(mine)
	assert.Equal(t, "mine", p.Text())
	assert.ErrorIs(t, c.SetDraft(mine, "x"), ErrNoDraft)
}

func TestEdit_BlankDraftSkipsNetwork(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	require.NoError(t, c.BeginEdit(mine))
	require.NoError(t, c.SetDraft(mine, "   "))
	require.NoError(t, c.SaveEdit(context.Background(), mine))

	assert.Empty(t, client.captions, "blank caption must not reach the gateway")
	p, _ := store.Get(mine)
	assert.Equal(t, "mine", p.Text(), "caption keeps its previous text")
	_, ok := c.Draft(mine)
	assert.False(t, ok, "blank save discards the draft")
}

func TestEdit_OwnerGated(t *testing.T) {
	c, _, _, _, theirs := newFixture(t, "u1")
	assert.ErrorIs(t, c.BeginEdit(theirs), ErrNotOwner)
}

func TestEdit_SaveFailureKeepsDraft(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")
	require.NoError(t, c.BeginEdit(mine))
	require.NoError(t, c.SetDraft(mine, "lost?"))

	client.err = errors.New("backend down")
	require.Error(t, c.SaveEdit(context.Background(), mine))

	d, ok := c.Draft(mine)
	require.True(t, ok, "failed save keeps the draft open")
	assert.Equal(t, "lost?", d)
	p, _ := store.Get(mine)
	assert.Equal(t, "mine", p.Text())
}

func TestArchiveAndTrash_RefreshWithoutRemoval(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")
	refreshes := 0
	c.onRefresh = func() { refreshes++ }

	require.NoError(t, c.Archive(context.Background(), mine))
	require.NoError(t, c.Trash(context.Background(), mine))

	assert.Equal(t, []gateway.Status{gateway.StatusArchived, gateway.StatusTrashed}, client.statuses)
	assert.Equal(t, 2, refreshes)
	_, ok := store.Get(mine)
	assert.True(t, ok, "the next fetch excludes the post, the controller never filters")
}

func TestArchive_OwnerGated(t *testing.T) {
	c, client, _, _, theirs := newFixture(t, "u1")
	assert.ErrorIs(t, c.Archive(context.Background(), theirs), ErrNotOwner)
	assert.Empty(t, client.statuses)
}

func TestRestore_RemovesAfterSuccess(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	require.NoError(t, c.Restore(context.Background(), mine))

	assert.Equal(t, []feed.PostKey{mine}, client.restores)
	_, ok := store.Get(mine)
	assert.False(t, ok)
}

func TestRestore_FailureLeavesListed(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")
	client.err = errors.New("backend down")

	require.Error(t, c.Restore(context.Background(), mine))
	_, ok := store.Get(mine)
	assert.True(t, ok)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	err := c.ConfirmDelete(context.Background(), mine, gateway.StatusTrashed)
	assert.ErrorIs(t, err, ErrNotConfirming)
	assert.Empty(t, client.deletes)

	c.RequestDelete(mine)
	assert.Equal(t, DeleteConfirming, c.DeleteStateOf(mine))
	require.NoError(t, c.ConfirmDelete(context.Background(), mine, gateway.StatusTrashed))

	assert.Equal(t, []feed.PostKey{mine}, client.deletes)
	_, ok := store.Get(mine)
	assert.False(t, ok)
	assert.Equal(t, DeleteIdle, c.DeleteStateOf(mine))
}

func TestDelete_CancelBeforeConfirm(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")

	c.RequestDelete(mine)
	c.CancelDelete(mine)

	assert.Equal(t, DeleteIdle, c.DeleteStateOf(mine))
	assert.ErrorIs(t, c.ConfirmDelete(context.Background(), mine, gateway.StatusTrashed), ErrNotConfirming)
	assert.Empty(t, client.deletes)
	_, ok := store.Get(mine)
	assert.True(t, ok)
}

func TestDelete_CancelDisabledInFlight(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")
	client.deleteC = make(chan struct{})

	c.RequestDelete(mine)
	done := make(chan error, 1)
	go func() { done <- c.ConfirmDelete(context.Background(), mine, gateway.StatusTrashed) }()

	require.Eventually(t, func() bool { return c.DeleteStateOf(mine) == DeleteInFlight },
		time.Second, time.Millisecond)

	// Cancel during the in-flight call must not stop the deletion.
	c.CancelDelete(mine)
	assert.Equal(t, DeleteInFlight, c.DeleteStateOf(mine))

	close(client.deleteC)
	require.NoError(t, <-done)
	_, ok := store.Get(mine)
	assert.False(t, ok)
}

func TestDelete_FailureKeepsItemListed(t *testing.T) {
	c, client, store, mine, _ := newFixture(t, "u1")
	client.err = errors.New("backend down")

	c.RequestDelete(mine)
	require.Error(t, c.ConfirmDelete(context.Background(), mine, gateway.StatusTrashed))

	_, ok := store.Get(mine)
	assert.True(t, ok, "failed delete leaves the item in the list")
	assert.Equal(t, DeleteIdle, c.DeleteStateOf(mine))
}

func TestShare_TargetsOriginalForSharedPosts(t *testing.T) {
	c, client, store, mine, theirs := newFixture(t, "u1")

	require.NoError(t, c.Share(context.Background(), mine, "look"))
	require.NoError(t, c.Share(context.Background(), theirs, "again"))

	assert.Equal(t, []string{"1", "7"}, client.shares, "re-sharing a share targets the original")
	p, _ := store.Get(mine)
	assert.Equal(t, 1, p.(*feed.RegularPost).ShareCount)
}

func TestShare_SignedOutNoop(t *testing.T) {
	c, client, _, mine, _ := newFixture(t, "")
	assert.NoError(t, c.Share(context.Background(), mine, "x"))
	assert.Empty(t, client.shares)
}
