// Package playback connects a media element's time and play state to the
// subtitle store: it answers which cues are active now and applies the
// transport and nudge controls of the editor.
package playback

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mgpai22/subforge/internal/store"
	"github.com/mgpai22/subforge/internal/subtitle"
)

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

const (
	StepFine   = 1.0
	StepCoarse = 5.0
)

var ErrUnknownDirection = errors.New("unknown direction")

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// nudge size, coarse when the modifier is held
func Step(coarse bool) float64 {
	if coarse {
		return StepCoarse
	}
	return StepFine
}

type Clock struct {
	media Media
	store *store.Store
}

func NewClock(media Media, st *store.Store) *Clock {
	return &Clock{media: media, store: st}
}

func (c *Clock) Media() Media {
	return c.media
}

// swaps the media element, e.g. after a new video is loaded
func (c *Clock) SetMedia(media Media) {
	c.media = media
}

func (c *Clock) Time() float64 {
	if c.media == nil {
		return 0
	}
	return c.media.CurrentTime()
}

func (c *Clock) Duration() float64 {
	if c.media == nil {
		return 0
	}
	return c.media.Duration()
}

func (c *Clock) Playing() bool {
	return c.media != nil && !c.media.Paused()
}

// seeks to a fraction of the duration, clamped to [0,1]
func (c *Clock) SeekTo(fraction float64) {
	if c.media == nil {
		return
	}
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	c.media.SetCurrentTime(fraction * c.media.Duration())
}

func (c *Clock) TogglePlayPause() error {
	if c.media == nil {
		return ErrNoMedia
	}
	if c.media.Paused() {
		return c.media.Play()
	}
	c.media.Pause()
	return nil
}

// pauses and rewinds to the start
func (c *Clock) Stop() {
	if c.media == nil {
		return
	}
	c.media.Pause()
	c.media.SetCurrentTime(0)
}

// cues active at the current media time
func (c *Clock) ActiveCues() []subtitle.Cue {
	return c.store.ActiveAt(c.Time())
}

// adds a default cue at the current time and selects it
func (c *Clock) AddCue() subtitle.Cue {
	cue := c.store.NewCueAt(c.Time())
	c.store.Add(cue)
	c.store.Select(cue.ID)
	return cue
}

// nudges the selected cue by step percent, clamped to [0,100].
// y grows downward. false when nothing is selected
func (c *Clock) MoveSelected(dir Direction, step float64) bool {
	cue, ok := c.store.Selected()
	if !ok {
		return false
	}

	var patch subtitle.Patch
	switch dir {
	case Up:
		patch.Y = subtitle.Float(clamp(cue.Y - step))
	case Down:
		patch.Y = subtitle.Float(clamp(cue.Y + step))
	case Left:
		patch.X = subtitle.Float(clamp(cue.X - step))
	case Right:
		patch.X = subtitle.Float(clamp(cue.X + step))
	default:
		return false
	}

	return c.store.Update(cue.ID, patch)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
