// Package tui implements the interactive terminal feed browser.
//
// The browser is a single BubbleTea model over the shared post store. Every
// network call runs as a tea.Cmd with its own timeout; the model itself never
// blocks. Reaction counts mutate in place on the store's posts, so the list
// re-renders optimistic updates without a refetch.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/carousel"
	"github.com/campuslink/campusfeed/internal/comments"
	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
	"github.com/campuslink/campusfeed/internal/images"
	"github.com/campuslink/campusfeed/internal/lifecycle"
	"github.com/campuslink/campusfeed/internal/reaction"
)

const (
	requestTimeout = 10 * time.Second

	// Picker open timers fire on their own goroutines, so the model polls
	// picker state until the pending transition lands or gives up.
	pickerPollInterval = 30 * time.Millisecond
	pickerPollLimit    = 40

	inputLimit = 500
)

// scope is which lifecycle bucket the list shows.
type scope int

const (
	scopeActive scope = iota
	scopeArchived
	scopeTrashed
)

func (s scope) String() string {
	switch s {
	case scopeArchived:
		return "Archived"
	case scopeTrashed:
		return "Trash"
	default:
		return "Feed"
	}
}

func (s scope) status() gateway.Status {
	if s == scopeTrashed {
		return gateway.StatusTrashed
	}
	return gateway.StatusArchived
}

// mode is the browser's input mode.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
	modeCompose
	modeCaption
	modeShare
	modeCarousel
	modeConfirmDelete
)

// Deps are the wired subsystems the browser renders and drives.
type Deps struct {
	Client    gateway.Client
	Store     *feed.Store
	Engine    *reaction.Engine
	Pickers   *reaction.PickerSet
	Comments  *comments.Cache
	Lifecycle *lifecycle.Controller
	Resolver  images.Resolver
	UserID    string
	UserName  string
	Logger    *zap.Logger
}

// Model represents the BubbleTea feed browser model.
type Model struct {
	client    gateway.Client
	store     *feed.Store
	engine    *reaction.Engine
	pickers   *reaction.PickerSet
	commentsC *comments.Cache
	lifecycle *lifecycle.Controller
	car       *carousel.Carousel
	resolver  images.Resolver
	userID    string
	userName  string
	logger    *zap.Logger

	mode     mode
	scope    scope
	raw      []feed.Post
	posts    []feed.Post
	cursor   int
	filter   feed.Filter
	loading  bool
	err      error
	status   string
	statusOK bool
	quitting bool
	width    int
	height   int

	selected feed.PostKey
	thread   []gateway.Comment

	pickerKey   feed.PostKey
	pickerPolls int

	spin  spinner.Model
	input textinput.Model
	body  viewport.Model
}

// NewModel creates the feed browser model.
func NewModel(deps Deps) (Model, error) {
	if deps.Client == nil {
		return Model{}, errors.New("tui: client is required")
	}
	if deps.Store == nil {
		return Model{}, errors.New("tui: store is required")
	}
	if deps.Engine == nil {
		return Model{}, errors.New("tui: reaction engine is required")
	}
	if deps.Pickers == nil {
		return Model{}, errors.New("tui: picker set is required")
	}
	if deps.Comments == nil {
		return Model{}, errors.New("tui: comment cache is required")
	}
	if deps.Lifecycle == nil {
		return Model{}, errors.New("tui: lifecycle controller is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	in := textinput.New()
	in.CharLimit = inputLimit

	return Model{
		client:    deps.Client,
		store:     deps.Store,
		engine:    deps.Engine,
		pickers:   deps.Pickers,
		commentsC: deps.Comments,
		lifecycle: deps.Lifecycle,
		car:       &carousel.Carousel{},
		resolver:  deps.Resolver,
		userID:    deps.UserID,
		userName:  deps.UserName,
		logger:    deps.Logger,
		loading:   true,
		spin:      sp,
		input:     in,
		body:      viewport.New(80, 20),
	}, nil
}

// Message types
type postsMsg struct {
	scope scope
	posts []feed.Post
}

type commentsMsg struct {
	key    feed.PostKey
	thread []gateway.Comment
}

type actionMsg struct {
	label        string
	err          error
	reloadFeed   bool
	reloadThread bool

	// remove drops the post from the rendered list on success. Inactive
	// scopes render straight from the fetched slice, so store removal
	// alone never reaches them.
	remove feed.PostKey
}

type pickerTickMsg struct{}

type errMsg error

// Init starts the initial feed load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadPosts())
}

// loadPosts fetches the current scope's posts from the gateway.
func (m Model) loadPosts() tea.Cmd {
	sc := m.scope
	client := m.client
	userID := m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			posts []feed.Post
			err   error
		)
		if sc == scopeActive {
			posts, err = client.FetchPosts(ctx, userID)
		} else {
			posts, err = client.FetchInactive(ctx, userID, sc.status())
		}
		if err != nil {
			return errMsg(err)
		}
		return postsMsg{scope: sc, posts: posts}
	}
}

// loadComments fetches a post's thread through the comment cache.
func (m Model) loadComments(key feed.PostKey, force bool) tea.Cmd {
	cache := m.commentsC
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		thread, err := cache.Fetch(ctx, key, force)
		if err != nil {
			return errMsg(err)
		}
		return commentsMsg{key: key, thread: thread}
	}
}

// react submits a reaction through the engine.
func (m Model) react(key feed.PostKey, kind feed.ReactionKind) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return actionMsg{label: kind.Label(), err: engine.React(ctx, key, kind)}
	}
}

// runAction wraps a mutating call in a command with a timeout.
func runAction(label string, reloadFeed, reloadThread bool, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return actionMsg{
			label:        label,
			err:          fn(ctx),
			reloadFeed:   reloadFeed,
			reloadThread: reloadThread,
		}
	}
}

func pollPicker() tea.Cmd {
	return tea.Tick(pickerPollInterval, func(time.Time) tea.Msg {
		return pickerTickMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = msg.Width - 6
		if msg.Height > 12 {
			m.body.Height = msg.Height - 10
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case postsMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		m.err = nil
		if msg.scope == scopeActive {
			m.store.Replace(msg.posts)
			m.raw = m.store.List()
		} else {
			m.raw = msg.posts
		}
		m.applyFilter()
		return m, nil

	case commentsMsg:
		if msg.key == m.selected {
			m.thread = msg.thread
			m.syncBody()
		}
		return m, nil

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.label, msg.err), false)
			return m, nil
		}
		m.setStatus(msg.label+" ok", true)
		if msg.remove != (feed.PostKey{}) {
			m.removeLocal(msg.remove)
		}
		var cmds []tea.Cmd
		if msg.reloadFeed {
			m.loading = true
			cmds = append(cmds, m.spin.Tick, m.loadPosts())
		}
		if msg.reloadThread && m.selected != (feed.PostKey{}) {
			cmds = append(cmds, m.loadComments(m.selected, false))
		}
		return m, tea.Batch(cmds...)

	case pickerTickMsg:
		if m.pickerKey == (feed.PostKey{}) {
			return m, nil
		}
		if m.pickers.State(m.pickerKey) == reaction.PickerHover {
			m.pickerPolls = 0
			return m, nil
		}
		m.pickerPolls++
		if m.pickerPolls >= pickerPollLimit {
			m.pickerKey = feed.PostKey{}
			m.pickerPolls = 0
			return m, nil
		}
		return m, pollPicker()

	case errMsg:
		m.loading = false
		m.err = error(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch, modeCompose, modeCaption, modeShare:
		return m.handleInputKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modeCarousel:
		return m.handleCarouselKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.closePicker()

	case "down", "j":
		if m.cursor < len(m.posts)-1 {
			m.cursor++
		}
		return m, m.closePicker()

	case "enter":
		p, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mode = modeDetail
		m.selected = p.Key()
		m.thread = nil
		m.syncBody()
		return m, m.loadComments(p.Key(), false)

	case "/":
		m.mode = modeSearch
		m.input.Placeholder = "search posts"
		m.input.SetValue(m.filter.Query)
		m.input.Focus()
		return m, textinput.Blink

	case "v":
		m.scope = (m.scope + 1) % 3
		m.cursor = 0
		m.raw = nil
		m.posts = nil
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.loadPosts())

	case "R":
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.loadPosts())

	case "r":
		return m.startPicker()

	case "1", "2", "3", "4", "5", "6":
		return m.pickReaction(msg.String())

	case "L":
		if p, ok := m.current(); ok && m.scope == scopeActive {
			return m, m.react(p.Key(), feed.ReactionLike)
		}
		return m, nil

	case "a":
		return m.ownerAction("archive", func(ctx context.Context, key feed.PostKey) error {
			return m.lifecycle.Archive(ctx, key)
		}, scopeActive, false)

	case "t":
		return m.ownerAction("trash", func(ctx context.Context, key feed.PostKey) error {
			return m.lifecycle.Trash(ctx, key)
		}, scopeActive, false)

	case "u":
		if m.scope == scopeActive {
			return m, nil
		}
		return m.ownerAction("restore", func(ctx context.Context, key feed.PostKey) error {
			return m.lifecycle.Restore(ctx, key)
		}, m.scope, true)

	case "d":
		if m.scope == scopeActive {
			return m, nil
		}
		p, ok := m.current()
		if !ok || !m.lifecycle.CanManage(p) {
			return m, nil
		}
		m.lifecycle.RequestDelete(p.Key())
		m.selected = p.Key()
		m.mode = modeConfirmDelete
		return m, nil

	case "e":
		if m.scope != scopeActive {
			return m, nil
		}
		p, ok := m.current()
		if !ok {
			return m, nil
		}
		if err := m.lifecycle.BeginEdit(p.Key()); err != nil {
			m.setStatus(fmt.Sprintf("edit: %v", err), false)
			return m, nil
		}
		draft, _ := m.lifecycle.Draft(p.Key())
		m.selected = p.Key()
		m.mode = modeCaption
		m.input.Placeholder = "caption"
		m.input.SetValue(draft)
		m.input.Focus()
		return m, textinput.Blink

	case "s":
		p, ok := m.current()
		if !ok || m.scope != scopeActive {
			return m, nil
		}
		m.selected = p.Key()
		m.mode = modeShare
		m.input.Placeholder = "say something about this"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "esc":
		if m.filter.Query != "" {
			m.filter.Query = ""
			m.applyFilter()
			return m, nil
		}
		return m, m.closePicker()
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeList
		m.selected = feed.PostKey{}
		m.thread = nil
		return m, m.closePicker()

	case "c":
		if m.userID == "" {
			m.setStatus("sign in to comment", false)
			return m, nil
		}
		m.mode = modeCompose
		m.input.Placeholder = "write a comment"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "o":
		p, ok := m.store.Get(m.selected)
		if !ok {
			if p, ok = m.currentByKey(m.selected); !ok {
				return m, nil
			}
		}
		urls := m.resolver.ResolveAll(imagesOf(p))
		if err := m.car.Open(m.selected, urls); err != nil {
			m.setStatus("no images on this post", false)
			return m, nil
		}
		m.mode = modeCarousel
		return m, nil

	case "r":
		return m.startPicker()

	case "1", "2", "3", "4", "5", "6":
		return m.pickReaction(msg.String())

	case "L":
		if m.scope == scopeActive {
			return m, m.react(m.selected, feed.ReactionLike)
		}
		return m, nil

	case "R":
		return m, m.loadComments(m.selected, true)
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m Model) handleCarouselKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "o":
		m.car.Close()
		m.mode = modeDetail
	case "right", "l", "n":
		m.car.Next()
	case "left", "h", "p":
		m.car.Prev()
	case "+", "=":
		m.car.ZoomIn()
	case "-":
		m.car.ZoomOut()
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if m.lifecycle.DeleteStateOf(m.selected) != lifecycle.DeleteConfirming {
			return m, nil
		}
		key := m.selected
		target := m.scope.status()
		m.mode = modeList
		m.loading = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			msg := actionMsg{label: "delete", err: m.lifecycle.ConfirmDelete(ctx, key, target), reloadFeed: true}
			if msg.err == nil {
				msg.remove = key
			}
			return msg
		})

	case "n", "esc":
		m.lifecycle.CancelDelete(m.selected)
		if m.lifecycle.DeleteStateOf(m.selected) == lifecycle.DeleteInFlight {
			// Delete already dispatched; the confirm prompt stays until it
			// settles.
			return m, nil
		}
		m.mode = modeList
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		switch m.mode {
		case modeCaption:
			m.lifecycle.CancelEdit(m.selected)
			m.mode = modeList
		case modeCompose:
			m.mode = modeDetail
		default:
			m.mode = modeList
		}
		m.input.Blur()
		return m, nil

	case "enter":
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.input.Blur()

	switch m.mode {
	case modeSearch:
		m.mode = modeList
		m.filter.Query = value
		m.cursor = 0
		m.applyFilter()
		return m, nil

	case modeCompose:
		m.mode = modeDetail
		if strings.TrimSpace(value) == "" {
			m.setStatus("comment is empty", false)
			return m, nil
		}
		key := m.selected
		return m, runAction("comment", false, true, func(ctx context.Context) error {
			return m.commentsC.Add(ctx, key, value)
		})

	case modeCaption:
		m.mode = modeList
		key := m.selected
		if err := m.lifecycle.SetDraft(key, value); err != nil {
			m.setStatus(fmt.Sprintf("caption: %v", err), false)
			return m, nil
		}
		return m, runAction("caption", true, false, func(ctx context.Context) error {
			return m.lifecycle.SaveEdit(ctx, key)
		})

	case modeShare:
		m.mode = modeList
		key := m.selected
		return m, runAction("share", true, false, func(ctx context.Context) error {
			return m.lifecycle.Share(ctx, key, value)
		})
	}

	m.mode = modeList
	return m, nil
}

// startPicker begins the hover-open sequence for the focused post.
func (m Model) startPicker() (tea.Model, tea.Cmd) {
	if m.scope != scopeActive {
		return m, nil
	}
	key := m.selected
	if m.mode == modeList {
		p, ok := m.current()
		if !ok {
			return m, nil
		}
		key = p.Key()
	}
	if m.pickerKey == key && m.pickers.State(key) == reaction.PickerHover {
		m.pickers.Close(key)
		m.pickerKey = feed.PostKey{}
		return m, nil
	}
	m.pickerKey = key
	m.pickerPolls = 0
	m.pickers.HoverStart(key)
	return m, pollPicker()
}

// pickReaction maps a digit key to a reaction kind while the picker is open.
func (m Model) pickReaction(digit string) (tea.Model, tea.Cmd) {
	if m.pickerKey == (feed.PostKey{}) || m.pickers.State(m.pickerKey) != reaction.PickerHover {
		return m, nil
	}
	idx := int(digit[0] - '1')
	if idx < 0 || idx >= len(feed.ReactionKinds) {
		return m, nil
	}
	key := m.pickerKey
	m.pickerKey = feed.PostKey{}
	return m, m.react(key, feed.ReactionKinds[idx])
}

func (m *Model) closePicker() tea.Cmd {
	if m.pickerKey != (feed.PostKey{}) {
		m.pickers.Close(m.pickerKey)
		m.pickerKey = feed.PostKey{}
	}
	return nil
}

// ownerAction runs a lifecycle call against the focused post when the viewer
// owns it and the list shows the required scope. removeOnOK drops the post
// from the rendered list once the call has succeeded.
func (m Model) ownerAction(label string, fn func(context.Context, feed.PostKey) error, want scope, removeOnOK bool) (tea.Model, tea.Cmd) {
	if m.scope != want {
		return m, nil
	}
	p, ok := m.current()
	if !ok {
		return m, nil
	}
	if !m.lifecycle.CanManage(p) {
		m.setStatus("not your post", false)
		return m, nil
	}
	key := p.Key()
	m.loading = true
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg := actionMsg{label: label, err: fn(ctx, key), reloadFeed: true}
		if removeOnOK && msg.err == nil {
			msg.remove = key
		}
		return msg
	})
}

// removeLocal drops a post from the rendered list ahead of the refetch.
func (m *Model) removeLocal(key feed.PostKey) {
	for i, p := range m.raw {
		if p.Key() == key {
			m.raw = append(m.raw[:i:i], m.raw[i+1:]...)
			break
		}
	}
	m.applyFilter()
}

func (m *Model) applyFilter() {
	m.posts = m.filter.Apply(m.raw)
	if m.cursor >= len(m.posts) {
		m.cursor = len(m.posts) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) current() (feed.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.posts) {
		return nil, false
	}
	return m.posts[m.cursor], true
}

func (m Model) currentByKey(key feed.PostKey) (feed.Post, bool) {
	for _, p := range m.posts {
		if p.Key() == key {
			return p, true
		}
	}
	return nil, false
}

func (m *Model) setStatus(text string, ok bool) {
	m.status = text
	m.statusOK = ok
}

// imagesOf returns the image refs a post displays. A shared post shows the
// original snapshot's images; the share itself carries none.
func imagesOf(p feed.Post) []feed.ImageRef {
	switch v := p.(type) {
	case *feed.RegularPost:
		return v.Images
	case *feed.SharedPost:
		return v.Original.Images
	}
	return nil
}
