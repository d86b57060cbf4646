package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

// stubClient serves canned comment threads and records mutations.
type stubClient struct {
	gateway.Client

	threads map[feed.PostKey][]gateway.Comment
	getErr  error

	fetches int
	adds    []string
	edits   []string
	deletes []string
	mutErr  error
}

func (s *stubClient) GetComments(_ context.Context, key feed.PostKey) ([]gateway.Comment, error) {
	s.fetches++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.threads[key], nil
}

func (s *stubClient) AddComment(_ context.Context, userID string, key feed.PostKey, message string) error {
	if s.mutErr != nil {
		return s.mutErr
	}
	s.adds = append(s.adds, message)
	s.threads[key] = append(s.threads[key], gateway.Comment{
		ID: "new", PostKey: key, UserID: userID, Message: message, CreatedAt: time.Now(),
	})
	return nil
}

func (s *stubClient) EditComment(_ context.Context, _ string, key feed.PostKey, commentID, message string) error {
	if s.mutErr != nil {
		return s.mutErr
	}
	s.edits = append(s.edits, commentID)
	for i, cm := range s.threads[key] {
		if cm.ID == commentID {
			s.threads[key][i].Message = message
		}
	}
	return nil
}

func (s *stubClient) DeleteComment(_ context.Context, _ string, key feed.PostKey, commentID string) error {
	if s.mutErr != nil {
		return s.mutErr
	}
	s.deletes = append(s.deletes, commentID)
	kept := s.threads[key][:0]
	for _, cm := range s.threads[key] {
		if cm.ID != commentID {
			kept = append(kept, cm)
		}
	}
	s.threads[key] = kept
	return nil
}

func newFixture(t *testing.T) (*Cache, *stubClient, feed.PostKey) {
	t.Helper()
	key := feed.PostKey{Kind: feed.KindRegular, ID: "9"}
	client := &stubClient{threads: map[feed.PostKey][]gateway.Comment{
		key: {
			{ID: "c1", PostKey: key, UserName: "Bola", Message: "first"},
			{ID: "c2", PostKey: key, UserName: "Ada", Message: "second"},
		},
	}}
	cache, err := NewCache(client, "u1", nil)
	require.NoError(t, err)
	return cache, client, key
}

func TestNewCache_RequiresClient(t *testing.T) {
	_, err := NewCache(nil, "u1", nil)
	assert.Error(t, err)
}

func TestFetch_SecondOpenIsCached(t *testing.T) {
	cache, client, key := newFixture(t)

	first, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.fetches, "reopening the panel must not refetch")
}

func TestFetch_ForceRefetches(t *testing.T) {
	cache, client, key := newFixture(t)

	_, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	client.threads[key] = append(client.threads[key], gateway.Comment{ID: "c3", Message: "third"})
	thread, err := cache.Fetch(context.Background(), key, true)
	require.NoError(t, err)

	assert.Len(t, thread, 3)
	assert.Equal(t, 2, client.fetches)
}

func TestFetch_ErrorLeavesNothingCached(t *testing.T) {
	cache, client, key := newFixture(t)
	client.getErr = errors.New("backend down")

	_, err := cache.Fetch(context.Background(), key, false)
	require.Error(t, err)

	_, ok := cache.Count(key)
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	cache, _, key := newFixture(t)

	_, _, ok := cache.Preview(key)
	assert.False(t, ok, "no preview before the thread is fetched")

	_, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	last, n, ok := cache.Preview(key)
	require.True(t, ok)
	assert.Equal(t, "second", last.Message)
	assert.Equal(t, 2, n)
}

func TestAdd_RefreshesAndNotifies(t *testing.T) {
	cache, client, key := newFixture(t)
	var counts []int
	cache.onCount = func(k feed.PostKey, n int) {
		assert.Equal(t, key, k)
		counts = append(counts, n)
	}

	require.NoError(t, cache.Add(context.Background(), key, "welcome!"))

	assert.Equal(t, []string{"welcome!"}, client.adds)
	n, ok := cache.Count(key)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{3}, counts)
}

func TestAdd_RejectsEmptyMessage(t *testing.T) {
	cache, client, key := newFixture(t)
	err := cache.Add(context.Background(), key, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, client.adds)
}

func TestMutations_SignedOutNoop(t *testing.T) {
	_, client, key := newFixture(t)
	cache, err := NewCache(client, "", nil)
	require.NoError(t, err)

	assert.NoError(t, cache.Add(context.Background(), key, "hi"))
	assert.NoError(t, cache.Edit(context.Background(), key, "c1", "hi"))
	assert.NoError(t, cache.Delete(context.Background(), key, "c1"))
	assert.Empty(t, client.adds)
	assert.Empty(t, client.edits)
	assert.Empty(t, client.deletes)
}

func TestMutationFailure_LeavesCacheUnchanged(t *testing.T) {
	cache, client, key := newFixture(t)
	_, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	client.mutErr = errors.New("rejected")
	require.Error(t, cache.Add(context.Background(), key, "nope"))
	require.Error(t, cache.Edit(context.Background(), key, "c1", "nope"))
	require.Error(t, cache.Delete(context.Background(), key, "c1"))

	n, ok := cache.Count(key)
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestEditAndDelete_RefreshThread(t *testing.T) {
	cache, _, key := newFixture(t)
	_, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	require.NoError(t, cache.Edit(context.Background(), key, "c2", "second, amended"))
	last, _, ok := cache.Preview(key)
	require.True(t, ok)
	assert.Equal(t, "second, amended", last.Message)

	require.NoError(t, cache.Delete(context.Background(), key, "c2"))
	last, n, ok := cache.Preview(key)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "first", last.Message)
}

func TestInvalidateAndClear(t *testing.T) {
	cache, client, key := newFixture(t)
	_, err := cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)

	cache.Invalidate(key)
	_, ok := cache.Count(key)
	assert.False(t, ok)

	_, err = cache.Fetch(context.Background(), key, false)
	require.NoError(t, err)
	cache.Clear()
	_, ok = cache.Count(key)
	assert.False(t, ok)
	assert.Equal(t, 2, client.fetches)
}
