package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
)

// fakeGateway records the last decoded payload and answers with canned
// envelopes per operation.
type fakeGateway struct {
	t        *testing.T
	lastOp   string
	lastBody map[string]string
	replies  map[string]string
}

func (f *fakeGateway) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())
		require.Equal(f.t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		f.lastOp = r.PostFormValue("operation")
		f.lastBody = map[string]string{}
		require.NoError(f.t, json.Unmarshal([]byte(r.PostFormValue("payload")), &f.lastBody))

		reply, ok := f.replies[f.lastOp]
		if !ok {
			reply = `{"success": true}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}
}

func newTestClient(t *testing.T, f *fakeGateway) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(&Config{
		BaseURL:           srv.URL,
		Endpoint:          "/api/feed",
		RequestsPerSecond: 1000,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(&Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}

func TestFetchPosts_DecodesMixedFeed(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{
		OpGetPosts: `{"success": true, "posts": [
			{"post_id": "1", "post_userId": "u1", "user_name": "Alice", "like_count": 2, "total_reactions": 2},
			{"postS_id": "5", "postS_userId": "u2", "user_name": "Ben", "original_caption": "hi", "original_user_name": "Alice"}
		]}`,
	}}
	client := newTestClient(t, f)

	posts, err := client.FetchPosts(context.Background(), "u9")
	require.NoError(t, err)

	assert.Equal(t, OpGetPosts, f.lastOp)
	assert.Equal(t, "u9", f.lastBody["user_id"])
	require.Len(t, posts, 2)
	assert.IsType(t, &feed.RegularPost{}, posts[0])
	assert.IsType(t, &feed.SharedPost{}, posts[1])
}

func TestAddReaction_RegularAndShared(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{
		OpAddReaction:  `{"success": true, "action": "added"}`,
		OpAddReactionS: `{"success": true, "action": "changed"}`,
	}}
	client := newTestClient(t, f)

	action, err := client.AddReaction(context.Background(), "u1",
		feed.PostKey{Kind: feed.KindRegular, ID: "41"}, feed.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, feed.ActionAdded, action)
	assert.Equal(t, "41", f.lastBody["postId"])
	assert.Equal(t, "like", f.lastBody["reactionType"])

	action, err = client.AddReaction(context.Background(), "u1",
		feed.PostKey{Kind: feed.KindShared, ID: "9"}, feed.ReactionWow)
	require.NoError(t, err)
	assert.Equal(t, feed.ActionChanged, action)
	assert.Equal(t, OpAddReactionS, f.lastOp)
	assert.Equal(t, "9", f.lastBody["postSId"])
}

func TestAddReaction_UnknownAction(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{
		OpAddReaction: `{"success": true, "action": "toggled"}`,
	}}
	client := newTestClient(t, f)

	_, err := client.AddReaction(context.Background(), "u1",
		feed.PostKey{Kind: feed.KindRegular, ID: "1"}, feed.ReactionLike)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestGetComments_SharedVariantFields(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{
		OpGetCommentsS: `{"success": true, "comments": [
			{"commentS_id": 7, "commentS_message": "nice", "commentS_userId": "u3",
			 "commentS_createdAt": "2026-08-15 11:00:00", "user_name": "Carla"}
		]}`,
	}}
	client := newTestClient(t, f)

	key := feed.PostKey{Kind: feed.KindShared, ID: "9"}
	comments, err := client.GetComments(context.Background(), key)
	require.NoError(t, err)

	assert.Equal(t, "9", f.lastBody["postS_id"])
	require.Len(t, comments, 1)
	assert.Equal(t, "7", comments[0].ID)
	assert.Equal(t, "nice", comments[0].Message)
	assert.Equal(t, "u3", comments[0].UserID)
	assert.Equal(t, "Carla", comments[0].UserName)
	assert.Equal(t, key, comments[0].PostKey)
	assert.False(t, comments[0].CreatedAt.IsZero())
}

func TestBusinessRejection(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{
		OpUpdateCaption: `{"success": false, "error": "caption too long"}`,
	}}
	client := newTestClient(t, f)

	err := client.UpdateCaption(context.Background(), "u1",
		feed.PostKey{Kind: feed.KindRegular, ID: "1"}, "...")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "caption too long")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(&Config{BaseURL: srv.URL, Endpoint: "/api/feed"}, nil)
	require.NoError(t, err)

	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestMalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(&Config{BaseURL: srv.URL, Endpoint: "/api/feed"}, nil)
	require.NoError(t, err)

	err = client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestStatusOperations_PayloadShape(t *testing.T) {
	f := &fakeGateway{t: t, replies: map[string]string{}}
	client := newTestClient(t, f)
	ctx := context.Background()
	key := feed.PostKey{Kind: feed.KindShared, ID: "9"}

	require.NoError(t, client.UpdateStatus(ctx, "u2", key, StatusArchived))
	assert.Equal(t, map[string]string{
		"userId": "u2", "postId": "9", "action": "archive", "postType": "shared",
	}, f.lastBody)

	require.NoError(t, client.DeletePost(ctx, "u2", key, StatusTrashed))
	assert.Equal(t, "trash", f.lastBody["target"])

	require.NoError(t, client.RestorePost(ctx, "u2", key))
	assert.Equal(t, OpRestorePost, f.lastOp)
}
