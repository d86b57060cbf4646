// Package reaction reconciles a viewer's reaction actions with local feed
// state, derives the reaction summary shown on post cards, and runs the
// reaction-picker timing state machine.
package reaction

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

const instrumentationName = "github.com/campuslink/campusfeed/internal/reaction"

var (
	ErrInvalidKind = errors.New("invalid reaction kind")
)

// Engine applies reaction actions to the normalized store in sync with the
// gateway's authoritative response, without a feed refetch. All surfaces
// reading the store see the result of one arithmetic application.
type Engine struct {
	store  *feed.Store
	client gateway.Client
	userID string
	logger *zap.Logger
	tracer trace.Tracer

	pickers *PickerSet

	// onUpdated lets sibling views (sidebar counters) refresh independently.
	onUpdated func(feed.PostKey)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPickerSet attaches the picker set the engine closes after a reaction
// lands.
func WithPickerSet(p *PickerSet) Option {
	return func(e *Engine) { e.pickers = p }
}

// WithOnUpdated registers the reaction-updated callback.
func WithOnUpdated(fn func(feed.PostKey)) Option {
	return func(e *Engine) { e.onUpdated = fn }
}

// NewEngine creates a reaction engine for one signed-in viewer. An empty
// userID is allowed: the engine then treats every React call as a silent
// no-op, matching a signed-out session.
func NewEngine(store *feed.Store, client gateway.Client, userID string, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("feed store is required")
	}
	if client == nil {
		return nil, errors.New("gateway client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:  store,
		client: client,
		userID: userID,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// React records kind for the viewer on the given post and merges the
// gateway's verdict into the local counters.
//
// Signed-out sessions no-op silently. The previous reaction is whatever the
// post currently carries locally (a prior override, else the server-supplied
// user_reaction); Apply reads it from Counts.Own. If the post left the store
// while the request was in flight, the merge is dropped, which is the
// tolerated unmount race.
func (e *Engine) React(ctx context.Context, key feed.PostKey, kind feed.ReactionKind) error {
	if e.userID == "" {
		return nil
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	ctx, span := e.tracer.Start(ctx, "reaction.react")
	defer span.End()
	span.SetAttributes(
		attribute.String("post_key", key.String()),
		attribute.String("kind", string(kind)),
	)

	action, err := e.client.AddReaction(ctx, e.userID, key, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("reaction call failed",
			zap.String("post", key.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return fmt.Errorf("react to %s: %w", key, err)
	}

	merged := e.store.Update(key, func(p feed.Post) {
		if applyErr := p.Counts().Apply(action, kind); applyErr != nil {
			e.logger.Warn("reaction merge skipped", zap.Error(applyErr))
		}
	})
	if !merged {
		e.logger.Debug("reaction landed on a post no longer in view",
			zap.String("post", key.String()))
	}

	reactionsTotal.WithLabelValues(string(kind), string(action)).Inc()

	if e.pickers != nil {
		e.pickers.Close(key)
	}
	if e.onUpdated != nil {
		e.onUpdated(key)
	}

	span.SetAttributes(attribute.String("action", string(action)))
	return nil
}
