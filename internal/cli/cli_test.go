package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/subforge/internal/config"
	"github.com/mgpai22/subforge/internal/logging"
	"github.com/mgpai22/subforge/internal/store"
	"github.com/mgpai22/subforge/internal/subtitle"
)

const sampleASS = "[Events]\n" +
	"Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world\n" +
	"Dialogue: 0,0:00:03.00,0:00:06.00,Default,,0,0,0,,Second\n" +
	"Dialogue: 0,0:00:09.00,0:00:08.00,Default,,0,0,0,,Backwards\n"

func setup(t *testing.T) string {
	t.Helper()
	logger = logging.NewNop()
	cfg = config.Default()

	path := filepath.Join(t.TempDir(), "sample.ass")
	if err := os.WriteFile(path, []byte(sampleASS), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTimeArg(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.5", 12.5, false},
		{"0:01:02.50", 62.5, false},
		{" 3 ", 3, false},
		{"-1", 0, true},
		{"soon", 0, true},
		{"1:2", 0, true},
	}

	for _, tt := range tests {
		got, err := parseTimeArg(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimeArg(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseTimeArg(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	_ = inspectCmd.Flags().Set("json", "false")
	if err := runInspect(inspectCmd, []string{path}); err != nil {
		t.Fatalf("runInspect: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "3 cues") {
		t.Errorf("missing cue count:\n%s", got)
	}
	if !strings.Contains(got, "inverted cues: 1") {
		t.Errorf("inverted cue not reported:\n%s", got)
	}
}

func TestActiveCommand(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	activeCmd.SetOut(&out)
	_ = activeCmd.Flags().Set("at", "3.5")
	if err := runActive(activeCmd, []string{path}); err != nil {
		t.Fatalf("runActive: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 active cues, got:\n%s", out.String())
	}
	if !strings.Contains(lines[0], "Hello, world") || !strings.Contains(lines[1], "Second") {
		t.Errorf("unexpected order:\n%s", out.String())
	}

	out.Reset()
	_ = activeCmd.Flags().Set("at", "8.5")
	if err := runActive(activeCmd, []string{path}); err != nil {
		t.Fatalf("runActive: %v", err)
	}
	if !strings.HasPrefix(out.String(), "no cues at 00:08") {
		t.Errorf("inverted cue reported active: %q", out.String())
	}
}

func TestConvertCommand(t *testing.T) {
	path := setup(t)
	outPath := filepath.Join(filepath.Dir(path), "sample.vtt")

	var out bytes.Buffer
	convertCmd.SetOut(&out)
	_ = convertCmd.Flags().Set("format", "vtt")

	if err := runConvert(convertCmd, []string{path}); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if !strings.Contains(out.String(), "sample.vtt") {
		t.Errorf("output path not reported: %q", out.String())
	}

	track, err := subtitle.Open(outPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(track.Cues) != 3 || track.Cues[0].Text != "Hello, world" {
		t.Errorf("converted cues = %+v", track.Cues)
	}
}

func TestREPL(t *testing.T) {
	path := setup(t)

	session, renderer, err := openSession(context.Background(), path, "", 0, false)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	if renderer != nil {
		t.Error("renderer attached without --render")
	}
	if got := session.Clock().Duration(); got != 8 {
		t.Errorf("timeline duration = %v, want 8", got)
	}

	in := strings.NewReader("select 1\nmove left coarse\nbogus\nquit\nlist\n")
	var out bytes.Buffer
	if err := repl(context.Background(), session, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "cue 1 at (45, 80)") {
		t.Errorf("move not applied:\n%s", got)
	}
	if !strings.Contains(got, "error: unknown command") {
		t.Errorf("unknown command not reported:\n%s", got)
	}
	if strings.Contains(got, "Hello, world") {
		t.Errorf("commands after quit were executed:\n%s", got)
	}
}

func TestApplyOverlay(t *testing.T) {
	originals := []subtitle.Cue{
		subtitle.NewCue(1, 0, 1, "Hello", subtitle.DefaultStyle),
		subtitle.NewCue(2, 1, 2, "Same", subtitle.DefaultStyle),
	}
	st := store.New()
	st.ReplaceAll(originals)
	st.Update(1, subtitle.Patch{Text: subtitle.String("Bonjour")})

	applyOverlay(st, originals)

	if c, _ := st.Get(1); c.Text != "Bonjour\nHello" {
		t.Errorf("overlay text = %q", c.Text)
	}
	if c, _ := st.Get(2); c.Text != "Same" {
		t.Errorf("untranslated cue changed: %q", c.Text)
	}
}

func TestTranslatedPath(t *testing.T) {
	if got := translatedPath("dir/ep.ass", "Brazilian Portuguese", false); got != "dir/ep.brazilian-portuguese.ass" {
		t.Errorf("translatedPath = %q", got)
	}
	if got := translatedPath("ep.srt", "ja", true); got != "ep.ja.overlay.srt" {
		t.Errorf("translatedPath overlay = %q", got)
	}
}
