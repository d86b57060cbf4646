// Package gateway is the client boundary to the campus feed backend RPC.
//
// All traffic is a form-encoded POST carrying an operation name and a JSON
// payload; responses are JSON envelopes. Every operation is attempt-once:
// the caller decides what a failure means, the client never retries.
package gateway

import (
	"context"
	"time"

	"github.com/campuslink/campusfeed/internal/feed"
)

// Operation names understood by the backend.
const (
	OpPing            = "ping"
	OpGetPosts        = "get_posts_with_reactions"
	OpGetInactive     = "get_inactive_posts"
	OpAddReaction     = "add_reaction"
	OpAddReactionS    = "add_shared_reaction"
	OpGetComments     = "get_comments"
	OpGetCommentsS    = "get_shared_comments"
	OpAddComment      = "add_comment"
	OpAddCommentS     = "add_shared_comment"
	OpEditComment     = "edit_comment"
	OpEditCommentS    = "edit_shared_comment"
	OpDeleteComment   = "delete_comment"
	OpDeleteCommentS  = "delete_shared_comment"
	OpUpdateCaption   = "update_post_caption"
	OpUpdateStatus    = "update_post_status"
	OpRestorePost     = "restore_post"
	OpDeletePost      = "delete_post"
	OpSharePost       = "share_post"
)

// Status is a post's non-active lifecycle bucket.
type Status string

const (
	StatusArchived Status = "archive"
	StatusTrashed  Status = "trash"
)

// Comment is one comment on a regular or shared post.
type Comment struct {
	ID        string
	PostKey   feed.PostKey
	UserID    string
	UserName  string
	Message   string
	CreatedAt time.Time
}

// Client exposes the backend operations the feed core consumes. The regular
// and shared variants of each operation are folded behind feed.PostKey; the
// implementation picks the wire operation from the key's kind.
type Client interface {
	// Ping checks that the gateway is reachable.
	Ping(ctx context.Context) error

	// FetchPosts returns the active posts visible to userID, with reaction
	// counts and the viewer's own reaction resolved. Order is the server's.
	FetchPosts(ctx context.Context, userID string) ([]feed.Post, error)

	// FetchInactive returns userID's archived or trashed posts for the
	// moderation browse view.
	FetchInactive(ctx context.Context, userID string, status Status) ([]feed.Post, error)

	// AddReaction records kind for (userID, post). The returned action tells
	// the caller how to reconcile local counts: added, removed, or changed.
	AddReaction(ctx context.Context, userID string, key feed.PostKey, kind feed.ReactionKind) (feed.Action, error)

	// GetComments returns the post's comments, oldest first.
	GetComments(ctx context.Context, key feed.PostKey) ([]Comment, error)

	AddComment(ctx context.Context, userID string, key feed.PostKey, message string) error
	EditComment(ctx context.Context, userID string, key feed.PostKey, commentID, message string) error
	DeleteComment(ctx context.Context, userID string, key feed.PostKey, commentID string) error

	// UpdateCaption rewrites the post's own caption (the share caption for a
	// shared post, never the original snapshot).
	UpdateCaption(ctx context.Context, userID string, key feed.PostKey, caption string) error

	// UpdateStatus moves an active post to archive or trash.
	UpdateStatus(ctx context.Context, userID string, key feed.PostKey, status Status) error

	// RestorePost returns an archived or trashed post to the active set.
	RestorePost(ctx context.Context, userID string, key feed.PostKey) error

	// DeletePost permanently deletes a post out of the target bucket.
	DeletePost(ctx context.Context, userID string, key feed.PostKey, target Status) error

	// SharePost creates a shared post wrapping postID with the given caption.
	SharePost(ctx context.Context, userID, postID, caption string) error
}
