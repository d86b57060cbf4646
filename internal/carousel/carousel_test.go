package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campusfeed/internal/feed"
)

func openFixture(t *testing.T, n int) *Carousel {
	t.Helper()
	images := make([]string, n)
	for i := range images {
		images[i] = string(rune('a'+i)) + ".png"
	}
	var c Carousel
	require.NoError(t, c.Open(feed.PostKey{Kind: feed.KindRegular, ID: "5"}, images))
	return &c
}

func TestOpen_EmptySetRejected(t *testing.T) {
	var c Carousel
	assert.ErrorIs(t, c.Open(feed.PostKey{ID: "1"}, nil), ErrNoImages)
	assert.False(t, c.IsOpen())
}

func TestNavigation_WrapsBothWays(t *testing.T) {
	c := openFixture(t, 3)

	cur, _ := c.Current()
	assert.Equal(t, "a.png", cur)

	c.Next()
	c.Next()
	c.Next()
	cur, _ = c.Current()
	assert.Equal(t, "a.png", cur, "next from the last image wraps to the first")

	c.Prev()
	cur, _ = c.Current()
	assert.Equal(t, "c.png", cur, "previous from the first image wraps to the last")

	i, total := c.Index()
	assert.Equal(t, 2, i)
	assert.Equal(t, 3, total)
}

func TestNavigation_SingleImage(t *testing.T) {
	c := openFixture(t, 1)
	c.Next()
	c.Prev()
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "a.png", cur)
}

func TestZoom_ClampedAndStepped(t *testing.T) {
	c := openFixture(t, 2)

	assert.InDelta(t, 1.0, c.Zoom(), 1e-9)
	c.ZoomIn()
	assert.InDelta(t, 1.25, c.Zoom(), 1e-9)

	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	assert.InDelta(t, MaxZoom, c.Zoom(), 1e-9)

	for i := 0; i < 20; i++ {
		c.ZoomOut()
	}
	assert.InDelta(t, MinZoom, c.Zoom(), 1e-9)
}

func TestZoom_ResetsOnImageChangeAndClose(t *testing.T) {
	c := openFixture(t, 2)

	c.ZoomIn()
	c.Next()
	assert.InDelta(t, 1.0, c.Zoom(), 1e-9, "image change resets zoom")

	c.ZoomOut()
	c.Close()
	assert.False(t, c.IsOpen())
	assert.InDelta(t, 1.0, c.Zoom(), 1e-9, "close resets zoom")
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestSelectedPostSurvivesClose(t *testing.T) {
	c := openFixture(t, 2)
	key := feed.PostKey{Kind: feed.KindRegular, ID: "5"}
	assert.Equal(t, key, c.Selected())
	c.Close()
	assert.Equal(t, key, c.Selected(), "the comment panel stays on the post")
}

func TestClosedCarouselIgnoresInput(t *testing.T) {
	var c Carousel
	c.Next()
	c.Prev()
	c.ZoomIn()
	assert.InDelta(t, 1.0, c.Zoom(), 1e-9)
}
