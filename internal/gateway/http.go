package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/campuslink/campusfeed/internal/feed"
)

const instrumentationName = "github.com/campuslink/campusfeed/internal/gateway"

// Config configures the HTTP gateway client.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8950.
	BaseURL string

	// Endpoint is the RPC path under BaseURL. The backend mounts one
	// endpoint per dashboard role.
	Endpoint string

	// Timeout bounds a single operation (default 15s).
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls (default 10, burst 20).
	RequestsPerSecond float64
}

// DefaultConfig returns client defaults for local development.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://localhost:8950",
		Endpoint:          "/api/feed",
		Timeout:           15 * time.Second,
		RequestsPerSecond: 10,
	}
}

// HTTPClient implements Client over the backend's form-encoded RPC.
type HTTPClient struct {
	config  *Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	tracer    trace.Tracer
	meter     metric.Meter
	opCounter metric.Int64Counter
}

// NewHTTPClient creates a gateway client.
func NewHTTPClient(cfg *Config, logger *zap.Logger) (*HTTPClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &HTTPClient{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)*2),
		logger:  logger,
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
	}
	c.initMetrics()
	return c, nil
}

func (c *HTTPClient) initMetrics() {
	var err error
	c.opCounter, err = c.meter.Int64Counter(
		"campusfeed.gateway.operations_total",
		metric.WithDescription("Total gateway operations by name and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		c.logger.Warn("failed to create operation counter", zap.Error(err))
	}
}

// envelope is the backend's response shape. Unused fields stay empty per
// operation.
type envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
	Action   string            `json:"action,omitempty"`
	Posts    []json.RawMessage `json:"posts,omitempty"`
	Comments []json.RawMessage `json:"comments,omitempty"`
}

// call performs one RPC round trip. Attempt-once by design.
func (c *HTTPClient) call(ctx context.Context, op string, payload any) (*envelope, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op)
	defer span.End()

	env, err := c.doCall(ctx, op, payload)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.opCounter != nil {
		c.opCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
	return env, err
}

func (c *HTTPClient) doCall(ctx context.Context, op string, payload any) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	requestID := uuid.NewString()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", op, err)
	}

	form := url.Values{
		"operation": {op},
		"payload":   {string(body)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.BaseURL, "/")+c.config.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: gateway returned status %d: %s", op, resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrBadResponse, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "no reason given"
		}
		return nil, fmt.Errorf("%s: %w: %s", op, ErrRejected, msg)
	}

	c.logger.Debug("gateway call ok",
		zap.String("operation", op),
		zap.String("request_id", requestID))
	return &env, nil
}

// Ping checks reachability.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.call(ctx, OpPing, map[string]string{})
	return err
}

// FetchPosts retrieves the active feed for userID.
func (c *HTTPClient) FetchPosts(ctx context.Context, userID string) ([]feed.Post, error) {
	env, err := c.call(ctx, OpGetPosts, map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}
	posts, decErrs := feed.DecodePosts(env.Posts)
	for _, decErr := range decErrs {
		c.logger.Warn("dropping undecodable post record", zap.Error(decErr))
	}
	return posts, nil
}

// FetchInactive retrieves userID's archived or trashed posts.
func (c *HTTPClient) FetchInactive(ctx context.Context, userID string, status Status) ([]feed.Post, error) {
	env, err := c.call(ctx, OpGetInactive, map[string]string{
		"user_id": userID,
		"status":  string(status),
	})
	if err != nil {
		return nil, err
	}
	posts, decErrs := feed.DecodePosts(env.Posts)
	for _, decErr := range decErrs {
		c.logger.Warn("dropping undecodable post record", zap.Error(decErr))
	}
	return posts, nil
}

// AddReaction records a reaction and returns the server's action verdict.
func (c *HTTPClient) AddReaction(ctx context.Context, userID string, key feed.PostKey, kind feed.ReactionKind) (feed.Action, error) {
	op := OpAddReaction
	payload := map[string]string{
		"userId":       userID,
		"reactionType": string(kind),
	}
	if key.Kind == feed.KindShared {
		op = OpAddReactionS
		payload["postSId"] = key.ID
	} else {
		payload["postId"] = key.ID
	}

	env, err := c.call(ctx, op, payload)
	if err != nil {
		return "", err
	}
	action := feed.Action(env.Action)
	switch action {
	case feed.ActionAdded, feed.ActionRemoved, feed.ActionChanged:
		return action, nil
	}
	return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownAction, env.Action)
}

// rawComment mirrors one comment record; regular and shared rows use
// different field prefixes.
type rawComment struct {
	CommentID  json.RawMessage `json:"comment_id"`
	CommentSID json.RawMessage `json:"commentS_id"`

	Message  string `json:"comment_message"`
	MessageS string `json:"commentS_message"`

	CreatedAt  string `json:"comment_createdAt"`
	CreatedAtS string `json:"commentS_createdAt"`

	UserID  json.RawMessage `json:"comment_userId"`
	UserIDS json.RawMessage `json:"commentS_userId"`

	UserName string `json:"user_name"`
}

func rawField(data json.RawMessage) string {
	return string(bytes.Trim(bytes.TrimSpace(data), `"`))
}

// GetComments retrieves the post's comment list.
func (c *HTTPClient) GetComments(ctx context.Context, key feed.PostKey) ([]Comment, error) {
	op, payload := OpGetComments, map[string]string{"post_id": key.ID}
	if key.Kind == feed.KindShared {
		op, payload = OpGetCommentsS, map[string]string{"postS_id": key.ID}
	}

	env, err := c.call(ctx, op, payload)
	if err != nil {
		return nil, err
	}

	comments := make([]Comment, 0, len(env.Comments))
	for i, rec := range env.Comments {
		var raw rawComment
		if err := json.Unmarshal(rec, &raw); err != nil {
			c.logger.Warn("dropping undecodable comment record",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		cm := Comment{
			ID:        rawField(raw.CommentID),
			PostKey:   key,
			UserID:    rawField(raw.UserID),
			UserName:  raw.UserName,
			Message:   raw.Message,
			CreatedAt: feed.ParseTime(raw.CreatedAt),
		}
		if key.Kind == feed.KindShared {
			cm.ID = rawField(raw.CommentSID)
			cm.UserID = rawField(raw.UserIDS)
			cm.Message = raw.MessageS
			cm.CreatedAt = feed.ParseTime(raw.CreatedAtS)
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

// AddComment posts a new comment.
func (c *HTTPClient) AddComment(ctx context.Context, userID string, key feed.PostKey, message string) error {
	op := OpAddComment
	payload := map[string]string{"userId": userID, "message": message}
	if key.Kind == feed.KindShared {
		op = OpAddCommentS
		payload["postSId"] = key.ID
	} else {
		payload["postId"] = key.ID
	}
	_, err := c.call(ctx, op, payload)
	return err
}

// EditComment rewrites a comment's message.
func (c *HTTPClient) EditComment(ctx context.Context, userID string, key feed.PostKey, commentID, message string) error {
	op := OpEditComment
	payload := map[string]string{"userId": userID, "message": message}
	if key.Kind == feed.KindShared {
		op = OpEditCommentS
		payload["commentSId"] = commentID
	} else {
		payload["commentId"] = commentID
	}
	_, err := c.call(ctx, op, payload)
	return err
}

// DeleteComment removes a comment.
func (c *HTTPClient) DeleteComment(ctx context.Context, userID string, key feed.PostKey, commentID string) error {
	op := OpDeleteComment
	payload := map[string]string{"userId": userID}
	if key.Kind == feed.KindShared {
		op = OpDeleteCommentS
		payload["commentSId"] = commentID
	} else {
		payload["commentId"] = commentID
	}
	_, err := c.call(ctx, op, payload)
	return err
}

// UpdateCaption rewrites the post's caption.
func (c *HTTPClient) UpdateCaption(ctx context.Context, userID string, key feed.PostKey, caption string) error {
	_, err := c.call(ctx, OpUpdateCaption, map[string]string{
		"userId":   userID,
		"postId":   key.ID,
		"caption":  caption,
		"postType": string(key.Kind),
	})
	return err
}

// UpdateStatus archives or trashes an active post.
func (c *HTTPClient) UpdateStatus(ctx context.Context, userID string, key feed.PostKey, status Status) error {
	_, err := c.call(ctx, OpUpdateStatus, map[string]string{
		"userId":   userID,
		"postId":   key.ID,
		"action":   string(status),
		"postType": string(key.Kind),
	})
	return err
}

// RestorePost returns a post to the active set.
func (c *HTTPClient) RestorePost(ctx context.Context, userID string, key feed.PostKey) error {
	_, err := c.call(ctx, OpRestorePost, map[string]string{
		"userId":   userID,
		"postId":   key.ID,
		"postType": string(key.Kind),
	})
	return err
}

// DeletePost permanently deletes a post from the target bucket.
func (c *HTTPClient) DeletePost(ctx context.Context, userID string, key feed.PostKey, target Status) error {
	_, err := c.call(ctx, OpDeletePost, map[string]string{
		"userId":   userID,
		"postId":   key.ID,
		"postType": string(key.Kind),
		"target":   string(target),
	})
	return err
}

// SharePost shares a regular post with an optional caption.
func (c *HTTPClient) SharePost(ctx context.Context, userID, postID, caption string) error {
	_, err := c.call(ctx, OpSharePost, map[string]string{
		"userId":  userID,
		"postId":  postID,
		"caption": caption,
	})
	return err
}

var _ Client = (*HTTPClient)(nil)
