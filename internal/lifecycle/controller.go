// Package lifecycle drives owner-gated post mutations: caption edits,
// archive and trash moves, restore, share, and confirmed permanent delete.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

const instrumentationName = "github.com/campuslink/campusfeed/internal/lifecycle"

var (
	// ErrNotOwner rejects a mutation attempted on somebody else's post.
	ErrNotOwner = errors.New("post is not owned by the acting user")

	// ErrNoDraft means Save or Cancel was called without BeginEdit.
	ErrNoDraft = errors.New("no edit draft for post")

	// ErrNotConfirming means ConfirmDelete was called before RequestDelete.
	ErrNotConfirming = errors.New("delete was not requested for post")
)

// DeleteState is a post's position in the permanent-delete dialog flow.
type DeleteState int

const (
	// DeleteIdle means no delete dialog is open for the post.
	DeleteIdle DeleteState = iota
	// DeleteConfirming means the confirmation dialog is showing.
	DeleteConfirming
	// DeleteInFlight means the delete call is awaiting a response. Cancel
	// is a no-op in this state.
	DeleteInFlight
)

func (s DeleteState) String() string {
	switch s {
	case DeleteConfirming:
		return "confirming"
	case DeleteInFlight:
		return "deleting"
	default:
		return "idle"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnRefresh registers the feed-refresh callback fired after a status
// change, restore, delete, or share lands. The active list is never filtered
// here; the next fetch excludes moved posts.
func WithOnRefresh(fn func()) Option {
	return func(c *Controller) { c.onRefresh = fn }
}

// Controller mediates lifecycle mutations for the posts in one store. The
// store is whichever list is in view: the active feed, or an archive/trash
// browse list for restore and delete.
type Controller struct {
	store  *feed.Store
	client gateway.Client
	userID string
	logger *zap.Logger
	tracer trace.Tracer

	mu       sync.Mutex
	drafts   map[feed.PostKey]string
	deleting map[feed.PostKey]DeleteState

	onRefresh func()
}

// NewController creates a lifecycle controller acting as userID.
func NewController(store *feed.Store, client gateway.Client, userID string, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if client == nil {
		return nil, errors.New("gateway client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:    store,
		client:   client,
		userID:   userID,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		drafts:   make(map[feed.PostKey]string),
		deleting: make(map[feed.PostKey]DeleteState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CanManage reports whether the acting user owns the post. Ownership of a
// shared post belongs to the sharer, never the original author.
func (c *Controller) CanManage(p feed.Post) bool {
	return c.userID != "" && p.Owner().ID == c.userID
}

// BeginEdit opens an edit draft seeded with the post's current caption.
func (c *Controller) BeginEdit(key feed.PostKey) error {
	p, ok := c.store.Get(key)
	if !ok {
		return fmt.Errorf("begin edit: post %s not found", key)
	}
	if !c.CanManage(p) {
		return ErrNotOwner
	}

	c.mu.Lock()
	c.drafts[key] = captionOf(p)
	c.mu.Unlock()
	return nil
}

// Draft returns the current draft text. ok is false when no edit is open.
func (c *Controller) Draft(key feed.PostKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[key]
	return d, ok
}

// SetDraft replaces the draft text as the user types.
func (c *Controller) SetDraft(key feed.PostKey, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.drafts[key]; !ok {
		return ErrNoDraft
	}
	c.drafts[key] = text
	return nil
}

// SaveEdit sends the draft caption to the gateway and, on success, commits
// it into local state and closes the draft. On failure the draft stays open.
func (c *Controller) SaveEdit(ctx context.Context, key feed.PostKey) error {
	c.mu.Lock()
	draft, ok := c.drafts[key]
	c.mu.Unlock()
	if !ok {
		return ErrNoDraft
	}
	if strings.TrimSpace(draft) == "" {
		// A blank caption never reaches the gateway. The draft is
		// discarded and the post keeps its current text.
		c.mu.Lock()
		delete(c.drafts, key)
		c.mu.Unlock()
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "lifecycle.save_edit")
	defer span.End()
	span.SetAttributes(attribute.String("post_key", key.String()))

	if err := c.client.UpdateCaption(ctx, c.userID, key, draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("caption update failed",
			zap.String("post", key.String()),
			zap.Error(err))
		return fmt.Errorf("update caption of %s: %w", key, err)
	}

	c.store.Update(key, func(p feed.Post) { setCaption(p, draft) })
	c.mu.Lock()
	delete(c.drafts, key)
	c.mu.Unlock()
	return nil
}

// CancelEdit discards the draft without a network call.
func (c *Controller) CancelEdit(key feed.PostKey) {
	c.mu.Lock()
	delete(c.drafts, key)
	c.mu.Unlock()
}

// Archive moves a post to the archive bucket.
func (c *Controller) Archive(ctx context.Context, key feed.PostKey) error {
	return c.setStatus(ctx, key, gateway.StatusArchived)
}

// Trash moves a post to the trash bucket.
func (c *Controller) Trash(ctx context.Context, key feed.PostKey) error {
	return c.setStatus(ctx, key, gateway.StatusTrashed)
}

func (c *Controller) setStatus(ctx context.Context, key feed.PostKey, status gateway.Status) error {
	p, ok := c.store.Get(key)
	if !ok {
		return fmt.Errorf("set status: post %s not found", key)
	}
	if !c.CanManage(p) {
		return ErrNotOwner
	}

	ctx, span := c.tracer.Start(ctx, "lifecycle.set_status")
	defer span.End()
	span.SetAttributes(
		attribute.String("post_key", key.String()),
		attribute.String("status", string(status)),
	)

	if err := c.client.UpdateStatus(ctx, c.userID, key, status); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("status change failed",
			zap.String("post", key.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("move %s to %s: %w", key, status, err)
	}

	c.refresh()
	return nil
}

// Restore returns an archived or trashed post to the active set. The item
// is removed from the browse list only after the call has succeeded, so the
// removal is never rolled back.
func (c *Controller) Restore(ctx context.Context, key feed.PostKey) error {
	ctx, span := c.tracer.Start(ctx, "lifecycle.restore")
	defer span.End()
	span.SetAttributes(attribute.String("post_key", key.String()))

	if err := c.client.RestorePost(ctx, c.userID, key); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("restore failed",
			zap.String("post", key.String()),
			zap.Error(err))
		return fmt.Errorf("restore %s: %w", key, err)
	}

	c.store.Remove(key)
	c.refresh()
	return nil
}

// DeleteStateOf returns the post's position in the delete dialog flow.
func (c *Controller) DeleteStateOf(key feed.PostKey) DeleteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting[key]
}

// RequestDelete opens the confirmation dialog for a permanent delete.
func (c *Controller) RequestDelete(key feed.PostKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting[key] == DeleteIdle {
		c.deleting[key] = DeleteConfirming
	}
}

// CancelDelete dismisses the confirmation dialog. While the delete call is
// in flight the cancel path is disabled and this is a no-op.
func (c *Controller) CancelDelete(key feed.PostKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting[key] == DeleteConfirming {
		delete(c.deleting, key)
	}
}

// ConfirmDelete performs the permanent delete out of the target bucket. On
// success the item is removed from the browse list; on failure it stays
// listed and the dialog closes with the error surfaced to the caller.
func (c *Controller) ConfirmDelete(ctx context.Context, key feed.PostKey, target gateway.Status) error {
	c.mu.Lock()
	if c.deleting[key] != DeleteConfirming {
		c.mu.Unlock()
		return ErrNotConfirming
	}
	c.deleting[key] = DeleteInFlight
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "lifecycle.delete")
	defer span.End()
	span.SetAttributes(
		attribute.String("post_key", key.String()),
		attribute.String("target", string(target)),
	)

	err := c.client.DeletePost(ctx, c.userID, key, target)

	c.mu.Lock()
	delete(c.deleting, key)
	c.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("permanent delete failed",
			zap.String("post", key.String()),
			zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}

	c.store.Remove(key)
	c.refresh()
	return nil
}

// Share wraps a post into a new shared post with the given caption.
// Re-sharing a shared post targets the original, so share chains never
// nest.
func (c *Controller) Share(ctx context.Context, key feed.PostKey, caption string) error {
	if c.userID == "" {
		return nil
	}
	p, ok := c.store.Get(key)
	if !ok {
		return fmt.Errorf("share: post %s not found", key)
	}

	postID := key.ID
	if sp, isShared := p.(*feed.SharedPost); isShared {
		postID = sp.Original.ID
	}

	ctx, span := c.tracer.Start(ctx, "lifecycle.share")
	defer span.End()
	span.SetAttributes(attribute.String("post_id", postID))

	if err := c.client.SharePost(ctx, c.userID, postID, caption); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("share failed",
			zap.String("post", key.String()),
			zap.Error(err))
		return fmt.Errorf("share %s: %w", key, err)
	}

	c.store.Update(key, func(p feed.Post) {
		switch v := p.(type) {
		case *feed.RegularPost:
			v.ShareCount++
		case *feed.SharedPost:
			v.ShareCount++
		}
	})
	c.refresh()
	return nil
}

func (c *Controller) refresh() {
	if c.onRefresh != nil {
		c.onRefresh()
	}
}

func captionOf(p feed.Post) string {
	return p.Text()
}

func setCaption(p feed.Post, caption string) {
	switch v := p.(type) {
	case *feed.RegularPost:
		v.Caption = caption
	case *feed.SharedPost:
		v.Caption = caption
	}
}
