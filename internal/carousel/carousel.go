// Package carousel tracks the lightbox state for a post's image set: which
// image is showing, at what zoom, and which post the lightbox belongs to.
package carousel

import (
	"errors"

	"github.com/campuslink/campusfeed/internal/feed"
)

// Zoom bounds and step.
const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.25
)

// ErrNoImages rejects opening a lightbox with an empty image set.
var ErrNoImages = errors.New("post has no images")

// Carousel is one lightbox. It is independent of reaction and comment state
// but remembers the selected post so the comment panel knows what to fetch.
// Not safe for concurrent use; it lives inside a single view model.
type Carousel struct {
	selected feed.PostKey
	images   []string
	index    int
	zoom     float64
	open     bool
}

// Open starts a lightbox on the post's resolved image set, at the first
// image and neutral zoom.
func (c *Carousel) Open(selected feed.PostKey, images []string) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	c.selected = selected
	c.images = images
	c.index = 0
	c.zoom = 1.0
	c.open = true
	return nil
}

// Close shuts the lightbox and resets zoom. The selected post is kept so
// the comment panel can stay on it.
func (c *Carousel) Close() {
	c.open = false
	c.images = nil
	c.index = 0
	c.zoom = 1.0
}

// IsOpen reports whether the lightbox is showing.
func (c *Carousel) IsOpen() bool { return c.open }

// Selected returns the post the lightbox was opened from.
func (c *Carousel) Selected() feed.PostKey { return c.selected }

// Current returns the displayed image URL. ok is false when closed.
func (c *Carousel) Current() (string, bool) {
	if !c.open {
		return "", false
	}
	return c.images[c.index], true
}

// Index returns the current position and the set size.
func (c *Carousel) Index() (current, total int) {
	return c.index, len(c.images)
}

// Next advances to the following image, wrapping from the last back to the
// first. Zoom resets on every image change.
func (c *Carousel) Next() {
	if !c.open {
		return
	}
	c.index = (c.index + 1) % len(c.images)
	c.zoom = 1.0
}

// Prev steps to the preceding image, wrapping from the first to the last.
func (c *Carousel) Prev() {
	if !c.open {
		return
	}
	c.index = (c.index - 1 + len(c.images)) % len(c.images)
	c.zoom = 1.0
}

// Zoom returns the current zoom level.
func (c *Carousel) Zoom() float64 {
	if !c.open {
		return 1.0
	}
	return c.zoom
}

// ZoomIn increases zoom one step, clamped at the upper bound.
func (c *Carousel) ZoomIn() {
	if !c.open {
		return
	}
	c.zoom = clamp(c.zoom + ZoomStep)
}

// ZoomOut decreases zoom one step, clamped at the lower bound.
func (c *Carousel) ZoomOut() {
	if !c.open {
		return
	}
	c.zoom = clamp(c.zoom - ZoomStep)
}

func clamp(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
