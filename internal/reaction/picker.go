package reaction

import (
	"sync"
	"time"

	"github.com/campuslink/campusfeed/internal/feed"
)

// PickerState is the visibility state of one post's reaction picker.
type PickerState int

const (
	PickerClosed PickerState = iota
	PickerHover
	PickerLongPress
)

func (s PickerState) String() string {
	switch s {
	case PickerHover:
		return "hover"
	case PickerLongPress:
		return "long-press"
	default:
		return "closed"
	}
}

// Delays holds the picker's timing thresholds.
type Delays struct {
	// HoverOpen is how long the pointer must rest on the button before the
	// hover picker opens.
	HoverOpen time.Duration

	// HoverClose is the grace period after the pointer leaves before the
	// picker closes; re-entering the popover cancels it.
	HoverClose time.Duration

	// LongPress is the touch hold threshold; movement or release before it
	// elapses cancels the press.
	LongPress time.Duration
}

// DefaultDelays returns the production thresholds.
func DefaultDelays() Delays {
	return Delays{
		HoverOpen:  200 * time.Millisecond,
		HoverClose: 300 * time.Millisecond,
		LongPress:  500 * time.Millisecond,
	}
}

// pickerEntry carries one post's picker state and its pending timers. Each
// timer slot holds at most one live timer; scheduling a slot cancels its
// predecessor, and a fired callback acts only if it is still the slot's
// current timer.
type pickerEntry struct {
	state      PickerState
	openTimer  *time.Timer
	closeTimer *time.Timer
	pressTimer *time.Timer
}

// PickerSet runs the reaction-picker timing state machine for every post in
// a feed. Visibility is timing state, not business state: exactly one of
// {closed, hover, long-press} holds per post at any time, and every pending
// timer is cancelled by its opposite interaction, by a supersede, and by
// Close.
type PickerSet struct {
	mu      sync.Mutex
	delays  Delays
	entries map[feed.PostKey]*pickerEntry

	// onChange fires outside business mutations, on open and close, so a UI
	// can re-render. May be nil.
	onChange func(feed.PostKey, PickerState)
}

// NewPickerSet creates a picker set. Zero delay fields fall back to the
// defaults.
func NewPickerSet(delays Delays, onChange func(feed.PostKey, PickerState)) *PickerSet {
	def := DefaultDelays()
	if delays.HoverOpen <= 0 {
		delays.HoverOpen = def.HoverOpen
	}
	if delays.HoverClose <= 0 {
		delays.HoverClose = def.HoverClose
	}
	if delays.LongPress <= 0 {
		delays.LongPress = def.LongPress
	}
	return &PickerSet{
		delays:   delays,
		entries:  make(map[feed.PostKey]*pickerEntry),
		onChange: onChange,
	}
}

// State returns the current picker state for a post.
func (p *PickerSet) State(key feed.PostKey) PickerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[key]; ok {
		return e.state
	}
	return PickerClosed
}

// HoverStart handles the pointer entering the reaction button: any pending
// close is cancelled, and if the picker is closed an open timer starts.
func (p *PickerSet) HoverStart(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.entry(key)
	stopTimer(&e.closeTimer)
	if e.state != PickerClosed || e.openTimer != nil {
		return
	}
	var tm *time.Timer
	tm = time.AfterFunc(p.delays.HoverOpen, func() { p.timerOpen(key, tm, PickerHover) })
	e.openTimer = tm
}

// HoverEnd handles the pointer leaving the button: a pending open is
// cancelled, and an open picker starts its close grace timer.
func (p *PickerSet) HoverEnd(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.entry(key)
	stopTimer(&e.openTimer)
	if e.state == PickerClosed || e.closeTimer != nil {
		return
	}
	var tm *time.Timer
	tm = time.AfterFunc(p.delays.HoverClose, func() { p.timerClose(key, tm) })
	e.closeTimer = tm
}

// PopoverEnter handles the pointer entering the open picker itself,
// cancelling the close grace timer.
func (p *PickerSet) PopoverEnter(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopTimer(&p.entry(key).closeTimer)
}

// PopoverLeave handles the pointer leaving the open picker.
func (p *PickerSet) PopoverLeave(key feed.PostKey) {
	p.HoverEnd(key)
}

// PressStart handles a touch-down, arming the long-press timer.
func (p *PickerSet) PressStart(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.entry(key)
	if e.state != PickerClosed || e.pressTimer != nil {
		return
	}
	var tm *time.Timer
	tm = time.AfterFunc(p.delays.LongPress, func() { p.timerOpen(key, tm, PickerLongPress) })
	e.pressTimer = tm
}

// PressMove handles pointer movement during a press, cancelling the
// long-press before its threshold.
func (p *PickerSet) PressMove(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopTimer(&p.entry(key).pressTimer)
}

// PressEnd handles the touch lifting. A press that has not reached the
// threshold is cancelled; an already-open picker stays open for selection.
func (p *PickerSet) PressEnd(key feed.PostKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopTimer(&p.entry(key).pressTimer)
}

// Close closes one post's picker and cancels every pending timer for it.
func (p *PickerSet) Close(key feed.PostKey) {
	p.mu.Lock()
	e, ok := p.entries[key]
	var notify bool
	if ok {
		stopTimer(&e.openTimer)
		stopTimer(&e.closeTimer)
		stopTimer(&e.pressTimer)
		notify = e.state != PickerClosed
		delete(p.entries, key)
	}
	p.mu.Unlock()

	if notify && p.onChange != nil {
		p.onChange(key, PickerClosed)
	}
}

// CloseAll tears down every picker, for view unmount.
func (p *PickerSet) CloseAll() {
	p.mu.Lock()
	keys := make([]feed.PostKey, 0, len(p.entries))
	for key := range p.entries {
		keys = append(keys, key)
	}
	p.mu.Unlock()

	for _, key := range keys {
		p.Close(key)
	}
}

// entry returns the state record for key, creating it closed.
// Caller holds p.mu.
func (p *PickerSet) entry(key feed.PostKey) *pickerEntry {
	e, ok := p.entries[key]
	if !ok {
		e = &pickerEntry{}
		p.entries[key] = e
	}
	return e
}

// timerOpen runs when an open or long-press timer fires. A stale timer
// (already superseded or cancelled) is ignored.
func (p *PickerSet) timerOpen(key feed.PostKey, tm *time.Timer, to PickerState) {
	p.mu.Lock()
	e, ok := p.entries[key]
	if !ok {
		p.mu.Unlock()
		return
	}
	switch {
	case to == PickerHover && e.openTimer == tm:
		e.openTimer = nil
	case to == PickerLongPress && e.pressTimer == tm:
		e.pressTimer = nil
	default:
		p.mu.Unlock()
		return
	}
	// Opening supersedes everything else pending for this post.
	stopTimer(&e.openTimer)
	stopTimer(&e.closeTimer)
	stopTimer(&e.pressTimer)
	e.state = to
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(key, to)
	}
}

// timerClose runs when the close grace timer fires.
func (p *PickerSet) timerClose(key feed.PostKey, tm *time.Timer) {
	p.mu.Lock()
	e, ok := p.entries[key]
	if !ok || e.closeTimer != tm {
		p.mu.Unlock()
		return
	}
	e.closeTimer = nil
	e.state = PickerClosed
	delete(p.entries, key)
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(key, PickerClosed)
	}
}

func stopTimer(tm **time.Timer) {
	if *tm != nil {
		(*tm).Stop()
		*tm = nil
	}
}
