package render

import (
	"context"
	"time"

	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/timecode"
)

// Loop renders one overlay frame per tick while the media plays.
type Loop struct {
	media    playback.Media
	renderer Renderer

	// skip a render when the media time has not moved since the last frame
	SkipDuplicates bool
}

func NewLoop(media playback.Media, renderer Renderer) *Loop {
	return &Loop{media: media, renderer: renderer, SkipDuplicates: true}
}

// Run consumes frame ticks until the media is paused, the tick channel is
// closed, ctx is done or a render fails. It returns the number of frames
// rendered. A paused media at the first tick renders nothing.
func (l *Loop) Run(ctx context.Context, frames <-chan time.Time) (int, error) {
	rendered := 0
	last := int64(-1)

	for {
		select {
		case <-ctx.Done():
			return rendered, ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return rendered, nil
			}
		}

		if l.media.Paused() {
			return rendered, nil
		}

		ms := timecode.Milliseconds(l.media.CurrentTime())
		if l.SkipDuplicates && ms == last {
			continue
		}
		if err := l.renderer.RenderAt(ctx, ms); err != nil {
			return rendered, err
		}
		last = ms
		rendered++
	}
}

// Ticker emits frame ticks at fps until ctx is done, then closes the channel.
func Ticker(ctx context.Context, fps float64) <-chan time.Time {
	if fps <= 0 {
		fps = 1
	}
	interval := time.Duration(float64(time.Second) / fps)

	out := make(chan time.Time)
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				select {
				case out <- now:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
