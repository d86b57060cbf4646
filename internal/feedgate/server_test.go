package feedgate

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

// newEnv stands up a seeded dev gateway and a real client pointed at it.
func newEnv(t *testing.T) (*gateway.HTTPClient, *Store) {
	t.Helper()
	store := NewStore()
	store.Seed()

	srv, err := NewServer(store, nil, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := gateway.NewHTTPClient(&gateway.Config{
		BaseURL:           ts.URL,
		Endpoint:          "/api/feed",
		RequestsPerSecond: 1000,
	}, nil)
	require.NoError(t, err)
	return client, store
}

func findRegular(t *testing.T, posts []feed.Post, id string) *feed.RegularPost {
	t.Helper()
	for _, p := range posts {
		if rp, ok := p.(*feed.RegularPost); ok && rp.ID == id {
			return rp
		}
	}
	t.Fatalf("regular post %s not in feed", id)
	return nil
}

func findShared(t *testing.T, posts []feed.Post) *feed.SharedPost {
	t.Helper()
	for _, p := range posts {
		if sp, ok := p.(*feed.SharedPost); ok {
			return sp
		}
	}
	t.Fatalf("no shared post in feed")
	return nil
}

func TestPing(t *testing.T) {
	client, _ := newEnv(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestSeedFeedRoundTrip(t *testing.T) {
	client, _ := newEnv(t)

	posts, err := client.FetchPosts(context.Background(), "2")
	require.NoError(t, err)
	require.Len(t, posts, 4)

	p1 := findRegular(t, posts, "1")
	assert.Equal(t, "Alice Navarro", p1.User.Name)
	assert.Equal(t, 2, p1.Reactions.Total)
	assert.Equal(t, 1, p1.Reactions.Count(feed.ReactionLove))
	assert.Equal(t, feed.ReactionLove, p1.Reactions.Own, "viewer 2 loved post 1 in the seed")
	assert.Len(t, p1.Images, 2)
	assert.Equal(t, feed.SourceGoogleDrive, p1.Images[0].Source)

	sp := findShared(t, posts)
	assert.Equal(t, "Bola Adeyemi", sp.Sharer.Name)
	assert.Equal(t, "Intramurals signup closes Friday.", sp.Original.Caption)
	assert.Equal(t, "Chidi Okafor", sp.Original.Author.Name)
}

func TestReactionToggleSemantics(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()
	key := feed.PostKey{Kind: feed.KindRegular, ID: "2"}

	action, err := client.AddReaction(ctx, "1", key, feed.ReactionHaha)
	require.NoError(t, err)
	assert.Equal(t, feed.ActionAdded, action)

	action, err = client.AddReaction(ctx, "1", key, feed.ReactionSad)
	require.NoError(t, err)
	assert.Equal(t, feed.ActionChanged, action)

	action, err = client.AddReaction(ctx, "1", key, feed.ReactionSad)
	require.NoError(t, err)
	assert.Equal(t, feed.ActionRemoved, action)

	posts, err := client.FetchPosts(ctx, "1")
	require.NoError(t, err)
	p := findRegular(t, posts, "2")
	assert.Zero(t, p.Reactions.Total)
	assert.Empty(t, p.Reactions.Own)
}

func TestSharedReactionIsIndependent(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()

	posts, err := client.FetchPosts(ctx, "1")
	require.NoError(t, err)
	sp := findShared(t, posts)
	assert.Equal(t, feed.ReactionWow, sp.Reactions.Own)

	orig := findRegular(t, posts, sp.Original.ID)
	assert.Zero(t, orig.Reactions.Total, "reacting to the share never touches the original")
}

func TestCommentLifecycle(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()
	key := feed.PostKey{Kind: feed.KindRegular, ID: "1"}

	require.NoError(t, client.AddComment(ctx, "3", key, "See you there"))
	thread, err := client.GetComments(ctx, key)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	added := thread[1]
	assert.Equal(t, "See you there", added.Message)
	assert.Equal(t, "Chidi Okafor", added.UserName)

	require.NoError(t, client.EditComment(ctx, "3", key, added.ID, "See you all there"))
	thread, err = client.GetComments(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "See you all there", thread[1].Message)

	// Editing somebody else's comment is rejected as a business failure.
	err = client.EditComment(ctx, "1", key, added.ID, "hijacked")
	assert.ErrorIs(t, err, gateway.ErrRejected)

	require.NoError(t, client.DeleteComment(ctx, "3", key, added.ID))
	thread, err = client.GetComments(ctx, key)
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestSharedCommentThread(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()

	posts, err := client.FetchPosts(ctx, "1")
	require.NoError(t, err)
	key := findShared(t, posts).Key()

	require.NoError(t, client.AddComment(ctx, "1", key, "Nice share"))
	thread, err := client.GetComments(ctx, key)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "Nice share", thread[0].Message)
	assert.Equal(t, key, thread[0].PostKey)
}

func TestCaptionEditIsOwnerGated(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()
	key := feed.PostKey{Kind: feed.KindRegular, ID: "1"}

	err := client.UpdateCaption(ctx, "2", key, "not yours")
	assert.ErrorIs(t, err, gateway.ErrRejected)

	require.NoError(t, client.UpdateCaption(ctx, "1", key, "Orientation week, full album up!"))
	posts, err := client.FetchPosts(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Orientation week, full album up!", findRegular(t, posts, "1").Caption)
}

func TestLifecycleArchiveRestoreDelete(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()
	key := feed.PostKey{Kind: feed.KindRegular, ID: "2"}

	require.NoError(t, client.UpdateStatus(ctx, "2", key, gateway.StatusArchived))
	posts, err := client.FetchPosts(ctx, "2")
	require.NoError(t, err)
	for _, p := range posts {
		assert.NotEqual(t, key, p.Key(), "archived post left the active feed")
	}

	inactive, err := client.FetchInactive(ctx, "2", gateway.StatusArchived)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, key, inactive[0].Key())

	require.NoError(t, client.RestorePost(ctx, "2", key))
	inactive, err = client.FetchInactive(ctx, "2", gateway.StatusArchived)
	require.NoError(t, err)
	assert.Empty(t, inactive)

	// Deleting requires the post to sit in the target bucket.
	err = client.DeletePost(ctx, "2", key, gateway.StatusTrashed)
	assert.ErrorIs(t, err, gateway.ErrRejected)

	require.NoError(t, client.UpdateStatus(ctx, "2", key, gateway.StatusTrashed))
	require.NoError(t, client.DeletePost(ctx, "2", key, gateway.StatusTrashed))

	posts, err = client.FetchPosts(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestShareSnapshotsOriginal(t *testing.T) {
	client, _ := newEnv(t)
	ctx := context.Background()

	require.NoError(t, client.SharePost(ctx, "1", "2", "Good news"))
	require.NoError(t, client.UpdateCaption(ctx, "2", feed.PostKey{Kind: feed.KindRegular, ID: "2"}, "edited later"))

	posts, err := client.FetchPosts(ctx, "1")
	require.NoError(t, err)
	var share *feed.SharedPost
	for _, p := range posts {
		if sp, ok := p.(*feed.SharedPost); ok && sp.Original.ID == "2" {
			share = sp
		}
	}
	require.NotNil(t, share)
	assert.Equal(t, "Library extends hours during finals.", share.Original.Caption,
		"the snapshot keeps the caption from share time")
	assert.Equal(t, 1, findRegular(t, posts, "2").ShareCount)
}

func TestUnknownOperation(t *testing.T) {
	client, _ := newEnv(t)
	_, err := client.FetchInactive(context.Background(), "1", gateway.Status("limbo"))
	assert.ErrorIs(t, err, gateway.ErrRejected)
}
