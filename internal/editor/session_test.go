package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/subforge/internal/config"
	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/render"
	"github.com/mgpai22/subforge/internal/subtitle"
)

const sampleASS = "[Script Info]\nTitle: sample\n\n[Events]\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
	"Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world\n" +
	"Dialogue: 0,0:00:03.00,0:00:06.50,Default,,0,0,0,,Second\\Nline\n" +
	"Dialogue: broken\n"

type recordingRenderer struct {
	canvas render.Canvas
	tracks []string
	frames []int64
}

func (r *recordingRenderer) Init(ctx context.Context, canvas render.Canvas) error {
	r.canvas = canvas
	return nil
}

func (r *recordingRenderer) LoadTrack(ctx context.Context, text string) error {
	r.tracks = append(r.tracks, text)
	return nil
}

func (r *recordingRenderer) RenderAt(ctx context.Context, ms int64) error {
	r.frames = append(r.frames, ms)
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newSession(t *testing.T) (*Session, *playback.VirtualMedia) {
	t.Helper()
	s := NewSession(config.Default(), nil)
	if _, err := s.LoadSubtitles(context.Background(), writeFile(t, "sample.ass", sampleASS)); err != nil {
		t.Fatalf("LoadSubtitles: %v", err)
	}

	now := time.Unix(1700000000, 0)
	media := playback.NewVirtualMedia(10 * time.Second)
	media.SetClock(func() time.Time { return now })
	s.SetMedia(media)
	return s, media
}

func mustExec(t *testing.T, s *Session, line string) string {
	t.Helper()
	out, err := s.Exec(context.Background(), line)
	if err != nil {
		t.Fatalf("Exec(%q): %v", line, err)
	}
	return out
}

func TestLoadSubtitlesReplacesTimeline(t *testing.T) {
	s, _ := newSession(t)

	cues := s.Store().Cues()
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "Hello, world" || cues[1].Text != "Second\nline" {
		t.Errorf("texts = %q, %q", cues[0].Text, cues[1].Text)
	}
	if s.Track().Format != subtitle.FormatASS {
		t.Errorf("format = %s", s.Track().Format)
	}
}

func TestRendererReceivesRawTrack(t *testing.T) {
	s, _ := newSession(t)
	r := &recordingRenderer{}

	if err := s.SetRenderer(context.Background(), r); err != nil {
		t.Fatalf("SetRenderer: %v", err)
	}
	if len(r.tracks) != 1 || r.tracks[0] != sampleASS {
		t.Fatal("renderer did not receive the file text verbatim")
	}
	if r.canvas.Width != 1280 || r.canvas.Height != 720 {
		t.Errorf("canvas = %+v", r.canvas)
	}

	mustExec(t, s, "seek 0.25")
	out := mustExec(t, s, "render")
	if len(r.frames) != 1 || r.frames[0] != 2500 {
		t.Errorf("frames = %v", r.frames)
	}
	if !strings.Contains(out, "2500ms") {
		t.Errorf("render output = %q", out)
	}
	if len(r.tracks) != 2 || !strings.Contains(r.tracks[1], "Hello, world") {
		t.Error("render should push the edited timeline")
	}
}

func TestActiveAndList(t *testing.T) {
	s, _ := newSession(t)

	mustExec(t, s, "seek 0.35")
	out := mustExec(t, s, "active")
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected two active cues at 3.5s, got:\n%s", out)
	}

	mustExec(t, s, "select 2")
	list := mustExec(t, s, "list")
	if !strings.Contains(list, "* 2 [00:03-00:06]") {
		t.Errorf("selection not marked:\n%s", list)
	}
}

func TestEditSelectedCue(t *testing.T) {
	s, _ := newSession(t)

	if out := mustExec(t, s, "set text nothing selected"); out != noSelection {
		t.Errorf("set without selection = %q", out)
	}

	mustExec(t, s, "select 1")
	mustExec(t, s, "set text Bonjour\\Nle monde")
	mustExec(t, s, "set color #FF0000")
	mustExec(t, s, "set font Times New Roman")
	mustExec(t, s, "set end 0:00:05.00")

	cue, ok := s.Store().Selected()
	if !ok {
		t.Fatal("selection lost")
	}
	if cue.Text != "Bonjour\nle monde" || cue.Color != "#FF0000" ||
		cue.FontFamily != "Times New Roman" || cue.End != 5 {
		t.Errorf("cue = %+v", cue)
	}

	if _, err := s.Exec(context.Background(), "set size 200"); err == nil {
		t.Error("expected error for font size out of range")
	}
	if _, err := s.Exec(context.Background(), "set colour red"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestMoveUsesConfiguredSteps(t *testing.T) {
	s, _ := newSession(t)
	mustExec(t, s, "select 1")

	mustExec(t, s, "move right coarse")
	mustExec(t, s, "move up")
	cue, _ := s.Store().Selected()
	if cue.X != 55 || cue.Y != 79 {
		t.Errorf("position = (%v, %v)", cue.X, cue.Y)
	}

	for i := 0; i < 20; i++ {
		mustExec(t, s, "move down coarse")
	}
	cue, _ = s.Store().Selected()
	if cue.Y != 100 {
		t.Errorf("y not clamped: %v", cue.Y)
	}

	if _, err := s.Exec(context.Background(), "move sideways"); !errors.Is(err, playback.ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
}

func TestAddDeleteAndTransport(t *testing.T) {
	s, _ := newSession(t)

	mustExec(t, s, "seek 0.5")
	out := mustExec(t, s, "add")
	if out != "added cue 3 at 00:05" {
		t.Errorf("add = %q", out)
	}
	if id, _ := s.Store().SelectedID(); id != 3 {
		t.Errorf("new cue not selected, selection = %d", id)
	}

	mustExec(t, s, "delete")
	if _, ok := s.Store().Selected(); ok {
		t.Error("deleting the selection should clear it")
	}
	if out := mustExec(t, s, "delete 42"); out != "no cue with id 42" {
		t.Errorf("delete unknown = %q", out)
	}

	mustExec(t, s, "play")
	if !s.Clock().Playing() {
		t.Error("expected playing")
	}
	mustExec(t, s, "pause")
	if s.Clock().Playing() {
		t.Error("expected paused")
	}
	mustExec(t, s, "stop")
	if out := mustExec(t, s, "time"); out != "00:00 / 00:10" {
		t.Errorf("time = %q", out)
	}
}

func TestWrapSelected(t *testing.T) {
	s, _ := newSession(t)
	mustExec(t, s, "select 1")
	mustExec(t, s, "set text the quick brown fox jumps over the lazy dog")
	mustExec(t, s, "wrap 20")

	cue, _ := s.Store().Selected()
	if !strings.Contains(cue.Text, "\n") {
		t.Errorf("text not wrapped: %q", cue.Text)
	}
}

func TestExport(t *testing.T) {
	s, _ := newSession(t)
	out := filepath.Join(t.TempDir(), "out", "edited.srt")

	mustExec(t, s, "export "+out)

	track, err := subtitle.Open(out)
	if err != nil {
		t.Fatalf("Open exported file: %v", err)
	}
	if len(track.Cues) != 2 || track.Cues[1].Text != "Second\nline" {
		t.Errorf("exported cues = %+v", track.Cues)
	}
}

func TestExportHiddenCue(t *testing.T) {
	s, _ := newSession(t)
	s.Store().Update(1, subtitle.Patch{X: subtitle.Float(30), FontSize: subtitle.Int(40)})
	s.Store().Update(2, subtitle.Patch{Visible: subtitle.Bool(false)})
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "edited.srt")
	msg := mustExec(t, s, "export "+srtPath)
	if msg != "wrote 1 cues to "+srtPath+", skipped 1 hidden (ids 2)" {
		t.Errorf("srt export message = %q", msg)
	}
	srt, err := subtitle.Open(srtPath)
	if err != nil {
		t.Fatalf("Open srt: %v", err)
	}
	if len(srt.Cues) != 1 {
		t.Errorf("srt cues = %+v", srt.Cues)
	}

	assPath := filepath.Join(dir, "edited.ass")
	msg = mustExec(t, s, "export "+assPath)
	if msg != "wrote 2 cues to "+assPath {
		t.Errorf("ass export message = %q", msg)
	}

	reloaded := NewSession(config.Default(), nil)
	if _, err := reloaded.LoadSubtitles(context.Background(), assPath); err != nil {
		t.Fatalf("LoadSubtitles: %v", err)
	}
	want := s.Store().Cues()
	got := reloaded.Store().Cues()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d cues, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d after reload:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
	if reloaded.Track().Skipped != 0 {
		t.Errorf("exported script reported %d skipped lines", reloaded.Track().Skipped)
	}
}

func TestLoadCountsMalformedLines(t *testing.T) {
	s, _ := newSession(t)
	if got := s.Track().Skipped; got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
}

func TestExecErrors(t *testing.T) {
	s := NewSession(nil, nil)
	ctx := context.Background()

	if _, err := s.Exec(ctx, "frobnicate"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if _, err := s.Exec(ctx, "seek 0.5"); !errors.Is(err, playback.ErrNoMedia) {
		t.Errorf("expected ErrNoMedia, got %v", err)
	}
	if _, err := s.Exec(ctx, "play"); !errors.Is(err, playback.ErrNoMedia) {
		t.Errorf("expected ErrNoMedia from play, got %v", err)
	}
	if _, err := s.Exec(ctx, "render"); err == nil {
		t.Error("expected error without renderer")
	}
	if out, err := s.Exec(ctx, "   "); out != "" || err != nil {
		t.Errorf("blank line = %q, %v", out, err)
	}
}

func TestParsePatch(t *testing.T) {
	tests := []struct {
		field, value string
		check        func(subtitle.Patch) bool
		wantErr      bool
	}{
		{"start", "1.5", func(p subtitle.Patch) bool { return *p.Start == 1.5 }, false},
		{"start", "0:01:00.00", func(p subtitle.Patch) bool { return *p.Start == 60 }, false},
		{"x", "12.5", func(p subtitle.Patch) bool { return *p.X == 12.5 }, false},
		{"visible", "false", func(p subtitle.Patch) bool { return !*p.Visible }, false},
		{"bg", "rgba(0,0,0,0.5)", func(p subtitle.Patch) bool { return *p.BackgroundColor == "rgba(0,0,0,0.5)" }, false},
		{"y", "101", nil, true},
		{"start", "soon", nil, true},
		{"visible", "maybe", nil, true},
		{"font", "", nil, true},
	}

	for _, tt := range tests {
		p, err := ParsePatch(tt.field, tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePatch(%q, %q): expected error", tt.field, tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePatch(%q, %q): %v", tt.field, tt.value, err)
			continue
		}
		if !tt.check(p) {
			t.Errorf("ParsePatch(%q, %q) = %+v", tt.field, tt.value, p)
		}
	}
}

func TestFormatCueFlags(t *testing.T) {
	c := subtitle.NewCue(4, 5, 2, "x", subtitle.DefaultStyle)
	c.Visible = false

	got := FormatCue(c, false)
	if !strings.HasSuffix(got, "[hidden,inverted]") {
		t.Errorf("FormatCue = %q", got)
	}
}
