package feedgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

// Config holds the dev gateway's listen address.
type Config struct {
	Host     string
	Port     int
	Endpoint string
}

// Server speaks the feed RPC over HTTP.
type Server struct {
	echo   *echo.Echo
	store  *Store
	logger *zap.Logger
	config *Config
}

// NewServer creates the dev gateway server.
func NewServer(store *Store, logger *zap.Logger, cfg *Config) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8950, Endpoint: "/api/feed"}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "/api/feed"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{echo: e, store: store, logger: logger, config: cfg}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST(s.config.Endpoint, s.handleRPC)
}

// Handler exposes the underlying handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// reply is the RPC response envelope.
type reply struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
	Action   string           `json:"action,omitempty"`
	Posts    []map[string]any `json:"posts,omitempty"`
	Comments []map[string]any `json:"comments,omitempty"`
}

func fail(c echo.Context, err error) error {
	return c.JSON(http.StatusOK, reply{Success: false, Error: err.Error()})
}

// rpcPayload is the union of every operation's request fields.
type rpcPayload struct {
	UserIDSnake string `json:"user_id"`
	UserID      string `json:"userId"`

	PostIDSnake  string `json:"post_id"`
	PostSIDSnake string `json:"postS_id"`
	PostID       string `json:"postId"`
	PostSID      string `json:"postSId"`
	PostType     string `json:"postType"`

	ReactionType string `json:"reactionType"`

	CommentID  string `json:"commentId"`
	CommentSID string `json:"commentSId"`
	Message    string `json:"message"`

	Caption string `json:"caption"`
	Action  string `json:"action"`
	Status  string `json:"status"`
	Target  string `json:"target"`
}

// postKey resolves the mutation id fields into a kind-qualified key.
func (p rpcPayload) postKey() feed.PostKey {
	if p.PostSID != "" {
		return feed.PostKey{Kind: feed.KindShared, ID: p.PostSID}
	}
	kind := feed.KindRegular
	if p.PostType == string(feed.KindShared) {
		kind = feed.KindShared
	}
	return feed.PostKey{Kind: kind, ID: p.PostID}
}

// handleRPC dispatches one form-encoded operation. Business failures answer
// HTTP 200 with success=false, matching the production endpoints; only a
// malformed request is an HTTP error.
func (s *Server) handleRPC(c echo.Context) error {
	op := c.FormValue("operation")
	if op == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "operation field is required")
	}

	var p rpcPayload
	if raw := c.FormValue("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warn("malformed payload", zap.String("operation", op), zap.Error(err))
			return echo.NewHTTPError(http.StatusBadRequest, "payload is not valid JSON")
		}
	}

	s.logger.Debug("rpc", zap.String("operation", op))

	switch op {
	case gateway.OpPing:
		return c.JSON(http.StatusOK, reply{Success: true, Message: "pong"})

	case gateway.OpGetPosts:
		return c.JSON(http.StatusOK, reply{Success: true, Posts: s.store.ListActive(p.UserIDSnake)})

	case gateway.OpGetInactive:
		if p.Status != statusArchive && p.Status != statusTrash {
			return fail(c, fmt.Errorf("unknown status %q", p.Status))
		}
		return c.JSON(http.StatusOK, reply{Success: true, Posts: s.store.ListInactive(p.UserIDSnake, p.Status)})

	case gateway.OpAddReaction, gateway.OpAddReactionS:
		key := feed.PostKey{Kind: feed.KindRegular, ID: p.PostID}
		if op == gateway.OpAddReactionS {
			key = feed.PostKey{Kind: feed.KindShared, ID: p.PostSID}
		}
		action, err := s.store.React(p.UserID, key, feed.ReactionKind(p.ReactionType))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true, Action: string(action)})

	case gateway.OpGetComments:
		key := feed.PostKey{Kind: feed.KindRegular, ID: p.PostIDSnake}
		return c.JSON(http.StatusOK, reply{Success: true, Comments: s.store.Comments(key)})

	case gateway.OpGetCommentsS:
		key := feed.PostKey{Kind: feed.KindShared, ID: p.PostSIDSnake}
		return c.JSON(http.StatusOK, reply{Success: true, Comments: s.store.Comments(key)})

	case gateway.OpAddComment, gateway.OpAddCommentS:
		key := feed.PostKey{Kind: feed.KindRegular, ID: p.PostID}
		if op == gateway.OpAddCommentS {
			key = feed.PostKey{Kind: feed.KindShared, ID: p.PostSID}
		}
		if _, err := s.store.AddComment(p.UserID, key, p.Message); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true, Message: "comment added"})

	case gateway.OpEditComment:
		if err := s.store.EditComment(p.UserID, feed.KindRegular, p.CommentID, p.Message); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpEditCommentS:
		if err := s.store.EditComment(p.UserID, feed.KindShared, p.CommentSID, p.Message); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpDeleteComment:
		if err := s.store.DeleteComment(p.UserID, feed.KindRegular, p.CommentID); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpDeleteCommentS:
		if err := s.store.DeleteComment(p.UserID, feed.KindShared, p.CommentSID); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpUpdateCaption:
		if err := s.store.UpdateCaption(p.UserID, p.postKey(), p.Caption); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpUpdateStatus:
		if err := s.store.UpdateStatus(p.UserID, p.postKey(), p.Action); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpRestorePost:
		if err := s.store.Restore(p.UserID, p.postKey()); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpDeletePost:
		if err := s.store.Delete(p.UserID, p.postKey(), p.Target); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true})

	case gateway.OpSharePost:
		if _, err := s.store.Share(p.UserID, p.PostID, p.Caption); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reply{Success: true, Message: "post shared"})

	default:
		return fail(c, fmt.Errorf("unknown operation %q", op))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting dev gateway", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dev gateway")
	return s.echo.Shutdown(ctx)
}
