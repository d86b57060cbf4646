// Package comments caches per-post comment threads on demand.
//
// Threads are fetched lazily when a post's comment panel opens and are kept
// until invalidated. Every mutation goes to the gateway first and then
// force-refetches the thread, so the cache only ever holds what the backend
// confirmed.
package comments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

const instrumentationName = "github.com/campuslink/campusfeed/internal/comments"

// ErrEmptyMessage rejects blank comment bodies before they reach the wire.
var ErrEmptyMessage = errors.New("comment message is empty")

// Option configures a Cache.
type Option func(*Cache)

// WithOnCount registers a callback fired with the confirmed comment count
// after any thread refresh, so post cards can update their counters.
func WithOnCount(fn func(feed.PostKey, int)) Option {
	return func(c *Cache) { c.onCount = fn }
}

// Cache holds fetched comment threads keyed by post.
type Cache struct {
	mu      sync.RWMutex
	threads map[feed.PostKey][]gateway.Comment

	client  gateway.Client
	userID  string
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *Metrics
	onCount func(feed.PostKey, int)
}

// NewCache creates a comment cache for the signed-in user. An empty userID
// is allowed; mutations then no-op silently, matching the rest of the
// signed-out experience, while reads still work.
func NewCache(client gateway.Client, userID string, logger *zap.Logger, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, errors.New("gateway client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		threads: make(map[feed.PostKey][]gateway.Comment),
		client:  client,
		userID:  userID,
		logger:  logger,
		tracer:  otel.Tracer(instrumentationName),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the post's comment thread, oldest first. A cached thread is
// returned as-is unless force is set, so opening the same panel twice does
// not refetch.
func (c *Cache) Fetch(ctx context.Context, key feed.PostKey, force bool) ([]gateway.Comment, error) {
	if !force {
		c.mu.RLock()
		cached, ok := c.threads[key]
		c.mu.RUnlock()
		if ok {
			c.metrics.RecordHit()
			return cloneThread(cached), nil
		}
	}
	c.metrics.RecordMiss()

	ctx, span := c.tracer.Start(ctx, "comments.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("post_key", key.String()),
		attribute.Bool("force", force),
	)

	thread, err := c.client.GetComments(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch comments for %s: %w", key, err)
	}

	c.mu.Lock()
	c.threads[key] = thread
	size := len(c.threads)
	c.mu.Unlock()
	c.metrics.SetSize(size)

	if c.onCount != nil {
		c.onCount(key, len(thread))
	}
	return cloneThread(thread), nil
}

// Preview returns the most recent comment and the thread length for a post
// card's collapsed view. ok is false when the thread was never fetched or
// is empty.
func (c *Cache) Preview(key feed.PostKey) (gateway.Comment, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	thread, ok := c.threads[key]
	if !ok || len(thread) == 0 {
		return gateway.Comment{}, len(thread), false
	}
	return thread[len(thread)-1], len(thread), true
}

// Count returns the cached thread length. ok is false when nothing has been
// fetched for the post yet.
func (c *Cache) Count(key feed.PostKey) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	thread, ok := c.threads[key]
	return len(thread), ok
}

// Add posts a new comment and refreshes the thread with the backend's copy.
// The cache is untouched when the gateway rejects the comment.
func (c *Cache) Add(ctx context.Context, key feed.PostKey, message string) error {
	if c.userID == "" {
		return nil
	}
	if message == "" {
		return ErrEmptyMessage
	}
	if err := c.client.AddComment(ctx, c.userID, key, message); err != nil {
		c.logger.Error("add comment failed",
			zap.String("post", key.String()),
			zap.Error(err))
		return fmt.Errorf("add comment to %s: %w", key, err)
	}
	return c.refresh(ctx, key)
}

// Edit rewrites one of the viewer's comments, then refreshes the thread.
func (c *Cache) Edit(ctx context.Context, key feed.PostKey, commentID, message string) error {
	if c.userID == "" {
		return nil
	}
	if message == "" {
		return ErrEmptyMessage
	}
	if err := c.client.EditComment(ctx, c.userID, key, commentID, message); err != nil {
		c.logger.Error("edit comment failed",
			zap.String("post", key.String()),
			zap.String("comment", commentID),
			zap.Error(err))
		return fmt.Errorf("edit comment %s: %w", commentID, err)
	}
	return c.refresh(ctx, key)
}

// Delete removes one of the viewer's comments, then refreshes the thread.
func (c *Cache) Delete(ctx context.Context, key feed.PostKey, commentID string) error {
	if c.userID == "" {
		return nil
	}
	if err := c.client.DeleteComment(ctx, c.userID, key, commentID); err != nil {
		c.logger.Error("delete comment failed",
			zap.String("post", key.String()),
			zap.String("comment", commentID),
			zap.Error(err))
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	return c.refresh(ctx, key)
}

// Invalidate drops one post's cached thread, for when the post leaves view.
func (c *Cache) Invalidate(key feed.PostKey) {
	c.mu.Lock()
	delete(c.threads, key)
	size := len(c.threads)
	c.mu.Unlock()
	c.metrics.SetSize(size)
}

// Clear drops every cached thread, for view unmount.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.threads = make(map[feed.PostKey][]gateway.Comment)
	c.mu.Unlock()
	c.metrics.SetSize(0)
}

// refresh force-refetches after a confirmed mutation. The mutation already
// succeeded, so a refetch failure is surfaced but leaves the previous thread
// in place.
func (c *Cache) refresh(ctx context.Context, key feed.PostKey) error {
	if _, err := c.Fetch(ctx, key, true); err != nil {
		return err
	}
	return nil
}

func cloneThread(thread []gateway.Comment) []gateway.Comment {
	out := make([]gateway.Comment, len(thread))
	copy(out, thread)
	return out
}
