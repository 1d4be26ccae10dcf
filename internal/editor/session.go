// Package editor wires the subtitle store, the playback clock and the overlay
// renderer into one editing session driven by text commands.
package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subforge/internal/config"
	"github.com/mgpai22/subforge/internal/logging"
	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/render"
	"github.com/mgpai22/subforge/internal/store"
	"github.com/mgpai22/subforge/internal/subtitle"
	"github.com/mgpai22/subforge/internal/timecode"
	"github.com/mgpai22/subforge/internal/video"
)

type Session struct {
	cfg    *config.Config
	logger *logging.Logger

	store    *store.Store
	clock    *playback.Clock
	renderer render.Renderer

	track *subtitle.Track
	video *video.Info
}

func NewSession(cfg *config.Config, logger *logging.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	st := store.New(store.WithStyle(cfg.CueStyle()))
	return &Session{
		cfg:    cfg,
		logger: logger,
		store:  st,
		clock:  playback.NewClock(nil, st),
	}
}

func (s *Session) Store() *store.Store {
	return s.store
}

func (s *Session) Clock() *playback.Clock {
	return s.clock
}

// last loaded subtitle file, nil before LoadSubtitles
func (s *Session) Track() *subtitle.Track {
	return s.track
}

func (s *Session) Video() *video.Info {
	return s.video
}

// SetRenderer binds r to the configured canvas and feeds it the current
// track, if any.
func (s *Session) SetRenderer(ctx context.Context, r render.Renderer) error {
	canvas := render.Canvas{
		Dir:    s.cfg.Editor.FramesDir,
		Width:  s.cfg.Editor.CanvasWidth,
		Height: s.cfg.Editor.CanvasHeight,
	}
	if s.video != nil && s.video.Width > 0 && s.video.Height > 0 {
		canvas.Width = s.video.Width
		canvas.Height = s.video.Height
	}

	if err := r.Init(ctx, canvas); err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	s.renderer = r

	if s.track != nil {
		return s.pushTrack(ctx, s.trackText())
	}
	return nil
}

func (s *Session) SetMedia(media playback.Media) {
	s.clock.SetMedia(media)
}

// LoadSubtitles replaces the timeline with the cues of path and hands the
// track text to the renderer. Returns the number of cues loaded.
func (s *Session) LoadSubtitles(ctx context.Context, path string) (int, error) {
	track, err := subtitle.Open(path)
	if err != nil {
		return 0, err
	}

	s.store.ReplaceAll(track.Cues)
	s.track = track

	if track.Skipped > 0 {
		s.logger.Debugw("Skipped malformed dialogue lines", "count", track.Skipped)
	}
	for _, c := range track.Cues {
		if c.Inverted() {
			s.logger.Warnw("Cue ends before it starts", "id", c.ID,
				"start", c.Start, "end", c.End)
		}
	}
	s.logger.Infow("Loaded subtitles", "path", path, "format", track.Format,
		"cues", len(track.Cues))

	if s.renderer != nil {
		if err := s.pushTrack(ctx, s.trackText()); err != nil {
			return len(track.Cues), err
		}
	}
	return len(track.Cues), nil
}

// LoadVideo probes path and installs a wall-clock media of its duration.
func (s *Session) LoadVideo(ctx context.Context, prober *video.Prober, path string) (*video.Info, error) {
	info, err := prober.GetInfo(ctx, path)
	if err != nil {
		return nil, err
	}
	s.video = info
	s.clock.SetMedia(playback.NewVirtualMedia(info.Duration))
	s.logger.Infow("Loaded video", "path", path,
		"duration", info.Duration.Round(time.Millisecond),
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height))
	return info, nil
}

// RenderFrame pushes the edited timeline to the renderer and draws the frame
// at the current media time.
func (s *Session) RenderFrame(ctx context.Context) (int64, error) {
	if s.renderer == nil {
		return 0, fmt.Errorf("no renderer attached")
	}
	if err := s.pushTrack(ctx, subtitle.RenderASS(s.store.Cues())); err != nil {
		return 0, err
	}
	ms := timecode.Milliseconds(s.clock.Time())
	if err := s.renderer.RenderAt(ctx, ms); err != nil {
		return 0, err
	}
	return ms, nil
}

// ASS files go to the renderer verbatim; other formats are converted
func (s *Session) trackText() string {
	if s.track.Format == subtitle.FormatASS {
		return s.track.Raw
	}
	return subtitle.RenderASS(s.track.Cues)
}

func (s *Session) pushTrack(ctx context.Context, text string) error {
	if err := s.renderer.LoadTrack(ctx, text); err != nil {
		return fmt.Errorf("failed to load track into renderer: %w", err)
	}
	return nil
}
