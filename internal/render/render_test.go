package render

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/subtitle"
)

type fakeRenderer struct {
	calls []int64
	err   error
	after func()
}

func (f *fakeRenderer) Init(ctx context.Context, canvas Canvas) error { return nil }

func (f *fakeRenderer) LoadTrack(ctx context.Context, text string) error { return nil }

func (f *fakeRenderer) RenderAt(ctx context.Context, ms int64) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, ms)
	if f.after != nil {
		f.after()
	}
	return nil
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newMedia(d time.Duration) (*playback.VirtualMedia, *fakeClock) {
	fc := &fakeClock{t: time.Unix(1700000000, 0)}
	m := playback.NewVirtualMedia(d)
	m.SetClock(fc.now)
	return m, fc
}

func TestLoopPausedRendersNothing(t *testing.T) {
	media, _ := newMedia(10 * time.Second)
	r := &fakeRenderer{}

	frames := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		frames <- time.Now()
	}

	n, err := NewLoop(media, r).Run(context.Background(), frames)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 || len(r.calls) != 0 {
		t.Errorf("rendered %d frames while paused", n)
	}
}

func TestLoopStopsWhenMediaEnds(t *testing.T) {
	media, fc := newMedia(2 * time.Second)
	media.SetCurrentTime(1)
	if err := media.Play(); err != nil {
		t.Fatal(err)
	}

	// every rendered frame moves the clock half a second
	r := &fakeRenderer{after: func() { fc.t = fc.t.Add(500 * time.Millisecond) }}
	frames := make(chan time.Time, 5)
	for i := 0; i < 5; i++ {
		frames <- time.Now()
	}

	n, err := NewLoop(media, r).Run(context.Background(), frames)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []int64{1000, 1500}
	if n != len(want) {
		t.Fatalf("rendered %d frames, want %d (%v)", n, len(want), r.calls)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("frame %d at %dms, want %dms", i, r.calls[i], want[i])
		}
	}
	if len(frames) != 2 {
		t.Errorf("loop kept consuming ticks after the media ended: %d left", len(frames))
	}
}

func TestLoopSkipsDuplicateTimes(t *testing.T) {
	media, _ := newMedia(10 * time.Second)
	_ = media.Play()

	r := &fakeRenderer{}
	frames := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		frames <- time.Now()
	}
	close(frames)

	n, err := NewLoop(media, r).Run(context.Background(), frames)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one frame for a frozen clock, got %d", n)
	}
}

func TestLoopRenderErrorEndsLoop(t *testing.T) {
	media, _ := newMedia(10 * time.Second)
	_ = media.Play()

	boom := errors.New("boom")
	frames := make(chan time.Time, 1)
	frames <- time.Now()

	_, err := NewLoop(media, &fakeRenderer{err: boom}).Run(context.Background(), frames)
	if !errors.Is(err, boom) {
		t.Errorf("expected render error, got %v", err)
	}
}

func TestLoopContextCancel(t *testing.T) {
	media, _ := newMedia(10 * time.Second)
	_ = media.Play()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoop(media, &fakeRenderer{}).Run(ctx, make(chan time.Time))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTickerClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := Ticker(ctx, 200)

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("ticker channel not closed after cancel")
		}
	}
}

func TestFFmpegRendererRequiresInit(t *testing.T) {
	r := NewFFmpegRenderer("", "", nil)
	ctx := context.Background()

	if err := r.LoadTrack(ctx, "x"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("LoadTrack before Init: %v", err)
	}
	if err := r.RenderAt(ctx, 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("RenderAt before Init: %v", err)
	}
	if err := r.Init(ctx, Canvas{}); err == nil {
		t.Error("expected error for empty canvas")
	}

	if err := r.Init(ctx, Canvas{Dir: t.TempDir(), Width: 64, Height: 36}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := r.RenderAt(ctx, 0); !errors.Is(err, ErrNoTrack) {
		t.Errorf("RenderAt without track: %v", err)
	}
}

func TestFFmpegRendererLoadTrackReplacesFile(t *testing.T) {
	dir := t.TempDir()
	r := NewFFmpegRenderer("", "", nil)
	ctx := context.Background()
	if err := r.Init(ctx, Canvas{Dir: dir, Width: 64, Height: 36}); err != nil {
		t.Fatal(err)
	}

	if err := r.LoadTrack(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	first := r.trackPath
	if err := r.LoadTrack(ctx, "second"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("previous track file not removed")
	}
	data, err := os.ReadFile(r.trackPath)
	if err != nil || string(data) != "second" {
		t.Errorf("track file = %q, %v", data, err)
	}

	if filepath.Dir(r.trackPath) != dir {
		t.Errorf("track written outside the canvas dir: %s", r.trackPath)
	}
	last := r.trackPath
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := os.Stat(last); !os.IsNotExist(err) {
		t.Error("Close did not remove the track file")
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\subs\it's.ass`)
	want := `C\:\\subs\\it\'s.ass`
	if got != want {
		t.Errorf("escapeFilterPath = %q, want %q", got, want)
	}
}

func TestFFmpegRendererIntegration(t *testing.T) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}

	ctx := context.Background()
	dir := t.TempDir()
	r := NewFFmpegRenderer("", ffmpegPath, nil)
	if err := r.Init(ctx, Canvas{Dir: dir, Width: 320, Height: 180}); err != nil {
		t.Fatal(err)
	}

	cues := []subtitle.Cue{subtitle.NewCue(1, 0, 2, "hello", subtitle.DefaultStyle)}
	if err := r.LoadTrack(ctx, subtitle.RenderASS(cues)); err != nil {
		t.Fatal(err)
	}
	if err := r.RenderAt(ctx, 1000); err != nil {
		if strings.Contains(err.Error(), "exit status") {
			t.Skipf("ffmpeg without libass: %v", err)
		}
		t.Fatalf("RenderAt: %v", err)
	}
	if _, err := os.Stat(r.LastFrame()); err != nil {
		t.Errorf("frame missing: %v", err)
	}
}
