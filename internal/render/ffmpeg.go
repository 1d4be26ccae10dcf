package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subforge/internal/logging"
)

// FFmpegRenderer burns the loaded track into single frames with ffmpeg's
// libass based subtitles filter and writes them as PNG files. Without a
// source video frames are drawn on a black background of the canvas size.
type FFmpegRenderer struct {
	videoPath  string
	ffmpegPath string
	logger     *logging.Logger

	canvas    Canvas
	ready     bool
	trackPath string
	lastFrame string
}

func NewFFmpegRenderer(videoPath, ffmpegPath string, logger *logging.Logger) *FFmpegRenderer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FFmpegRenderer{
		videoPath:  videoPath,
		ffmpegPath: ffmpegPath,
		logger:     logger,
	}
}

func (r *FFmpegRenderer) Init(ctx context.Context, canvas Canvas) error {
	if !canvas.Valid() {
		return fmt.Errorf("invalid canvas %dx%d in %q", canvas.Width, canvas.Height, canvas.Dir)
	}
	if err := os.MkdirAll(canvas.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}
	r.canvas = canvas
	r.ready = true
	return nil
}

// LoadTrack stores the script next to the frames, replacing the previous one.
func (r *FFmpegRenderer) LoadTrack(ctx context.Context, text string) error {
	if !r.ready {
		return ErrNotInitialized
	}

	path := filepath.Join(r.canvas.Dir, "track-"+uuid.NewString()+".ass")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write track: %w", err)
	}

	if r.trackPath != "" {
		_ = os.Remove(r.trackPath)
	}
	r.trackPath = path
	r.logger.Debugw("Loaded subtitle track", "path", path, "bytes", len(text))
	return nil
}

func (r *FFmpegRenderer) RenderAt(ctx context.Context, ms int64) error {
	if !r.ready {
		return ErrNotInitialized
	}
	if r.trackPath == "" {
		return ErrNoTrack
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := r.FramePath(ms)
	if err := r.frameStream(ms, out).Run(); err != nil {
		return fmt.Errorf("ffmpeg frame render at %dms failed: %w", ms, err)
	}
	r.lastFrame = out
	r.logger.Debugw("Rendered frame", "ms", ms, "path", out)
	return nil
}

func (r *FFmpegRenderer) FramePath(ms int64) string {
	return filepath.Join(r.canvas.Dir, fmt.Sprintf("frame_%08d.png", ms))
}

// path of the most recent frame, "" before the first render
func (r *FFmpegRenderer) LastFrame() string {
	return r.lastFrame
}

// removes the track file. frames are kept
func (r *FFmpegRenderer) Close() error {
	if r.trackPath == "" {
		return nil
	}
	err := os.Remove(r.trackPath)
	r.trackPath = ""
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove track: %w", err)
	}
	return nil
}

func (r *FFmpegRenderer) frameStream(ms int64, out string) *ffmpeg.Stream {
	seconds := float64(ms) / 1000
	size := fmt.Sprintf("%dx%d", r.canvas.Width, r.canvas.Height)

	var input *ffmpeg.Stream
	if r.videoPath != "" {
		input = ffmpeg.Input(r.videoPath, ffmpeg.KwArgs{"ss": seconds})
	} else {
		input = ffmpeg.Input(
			fmt.Sprintf("color=c=black:s=%s:r=1", size),
			ffmpeg.KwArgs{"f": "lavfi"},
		)
	}

	// input seeking restarts timestamps at zero; shift them back so libass
	// picks the cues of the requested instant
	filter := fmt.Sprintf(
		"setpts=PTS+%.3f/TB,subtitles=%s,scale=%s",
		seconds, escapeFilterPath(r.trackPath), strings.Replace(size, "x", ":", 1),
	)

	return input.
		Output(out, ffmpeg.KwArgs{
			"vf":       filter,
			"frames:v": 1,
		}).
		OverWriteOutput().
		SetFfmpegPath(r.ffmpegPath)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
