// Package render draws the subtitle track over video frames. Rasterising the
// ASS script is delegated to an external renderer; this package only defines
// the capability it needs and drives it from the playback clock.
package render

import (
	"context"
	"errors"
)

var (
	ErrNotInitialized = errors.New("renderer not initialized")
	ErrNoTrack        = errors.New("no subtitle track loaded")
)

// Canvas is the surface frames are drawn onto.
type Canvas struct {
	Dir    string // frames are written here
	Width  int
	Height int
}

func (c Canvas) Valid() bool {
	return c.Dir != "" && c.Width > 0 && c.Height > 0
}

// Renderer is the overlay rasteriser: bind a canvas once, load the raw track
// text whenever the subtitles change, then ask for frames by timestamp.
type Renderer interface {
	Init(ctx context.Context, canvas Canvas) error
	LoadTrack(ctx context.Context, text string) error
	RenderAt(ctx context.Context, ms int64) error
}
