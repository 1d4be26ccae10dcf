package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderASSPositionsAndStyles(t *testing.T) {
	cue := NewCue(1, 1, 3, "Hello\nWorld", DefaultStyle)
	hidden := NewCue(2, 1, 3, "hidden", DefaultStyle)
	hidden.Visible = false

	out := RenderASS([]Cue{cue, hidden})

	if !strings.Contains(out, "Dialogue: 0,0:00:01.00,0:00:03.00,Default,,0,0,0,,") {
		t.Errorf("missing dialogue line:\n%s", out)
	}
	if !strings.Contains(out, "\\pos(960,864)") {
		t.Errorf("expected cue anchor at 960,864:\n%s", out)
	}
	if !strings.Contains(out, "\\1c&HFFFFFF&") {
		t.Errorf("expected primary color override:\n%s", out)
	}
	if !strings.Contains(out, "Hello\\NWorld") {
		t.Errorf("expected escaped line break:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Dialogue:") && strings.Contains(line, "hidden") {
			t.Errorf("hidden cue rendered as dialogue: %s", line)
		}
	}
	if !strings.Contains(out, "Comment: 0,0:00:01.00,0:00:03.00,Default,,0,0,0,,{\\an5") {
		t.Errorf("hidden cue not kept as a comment:\n%s", out)
	}
}

func TestRenderASSRoundTrip(t *testing.T) {
	styled := NewCue(1, 1.5, 2.25, "One, two\nthree", Style{
		X:               10,
		Y:               20,
		FontSize:        36,
		Color:           "#00D4FF",
		BackgroundColor: "rgba(10,20,30,0.5)",
		FontFamily:      "Times New Roman",
	})
	plain := NewCue(2, 62, 65, "Three", DefaultStyle)
	hidden := NewCue(3, 70, 71, "Hidden", DefaultStyle)
	hidden.X, hidden.Y = 12.5, 90
	hidden.Visible = false
	cues := []Cue{styled, plain, hidden}

	script := RenderASS(cues)
	parsed := Parse(script)
	if len(parsed) != len(cues) {
		t.Fatalf("expected %d cues, got %d", len(cues), len(parsed))
	}
	for i := range cues {
		if parsed[i] != cues[i] {
			t.Errorf("cue %d:\n got %+v\nwant %+v", i, parsed[i], cues[i])
		}
	}

	// a second pass must not stack another tag block in front of the text
	again := RenderASS(parsed)
	if again != script {
		t.Errorf("second round trip changed the script:\n%s\nwant\n%s", again, script)
	}
	if n := strings.Count(again, "\\pos("); n != len(cues) {
		t.Errorf("expected %d position tags, got %d", len(cues), n)
	}
}

func TestOmitted(t *testing.T) {
	hidden := NewCue(2, 0, 1, "b", DefaultStyle)
	hidden.Visible = false
	cues := []Cue{NewCue(1, 0, 1, "a", DefaultStyle), hidden}

	if ids := Omitted(FormatASS, cues); len(ids) != 0 {
		t.Errorf("ASS omitted %v", ids)
	}
	for _, format := range []Format{FormatSRT, FormatVTT} {
		if ids := Omitted(format, cues); len(ids) != 1 || ids[0] != 2 {
			t.Errorf("%s omitted %v, want [2]", format, ids)
		}
	}
}

func TestWriteFileSRTAndVTT(t *testing.T) {
	cues := []Cue{NewCue(4, 1, 4, "Hello, world!", DefaultStyle)}
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "nested", "out.srt")
	if err := WriteFile(srtPath, FormatSRT, cues); err != nil {
		t.Fatalf("WriteFile srt: %v", err)
	}
	data, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:04,000\nHello, world!\n\n"
	if string(data) != want {
		t.Errorf("srt output:\n%q\nwant\n%q", string(data), want)
	}

	track, err := Open(srtPath)
	if err != nil {
		t.Fatalf("re-open srt: %v", err)
	}
	if len(track.Cues) != 1 || track.Cues[0].Text != "Hello, world!" {
		t.Errorf("unexpected re-read cues: %+v", track.Cues)
	}

	vttPath := filepath.Join(dir, "out.vtt")
	if err := WriteFile(vttPath, FormatVTT, cues); err != nil {
		t.Fatalf("WriteFile vtt: %v", err)
	}
	vtt, err := Open(vttPath)
	if err != nil {
		t.Fatalf("re-open vtt: %v", err)
	}
	if len(vtt.Cues) != 1 || vtt.Cues[0].End != 4 {
		t.Errorf("unexpected vtt cues: %+v", vtt.Cues)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in        string
		wantColor string
		wantAlpha string
	}{
		{"#FFFFFF", "&HFFFFFF&", "&H00&"},
		{"#00D4FF", "&HFFD400&", "&H00&"},
		{"#f00", "&H0000FF&", "&H00&"},
		{"rgba(255, 0, 0, 0.5)", "&H0000FF&", "&H80&"},
		{"rgb(0,0,0)", "&H000000&", "&H00&"},
	}

	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.in, err)
		}
		if c.ASSColor() != tt.wantColor || c.ASSAlpha() != tt.wantAlpha {
			t.Errorf("ParseColor(%q) = %s %s, want %s %s",
				tt.in, c.ASSColor(), c.ASSAlpha(), tt.wantColor, tt.wantAlpha)
		}
	}

	for _, bad := range []string{"", "#12", "rgba(300,0,0,1)", "blue"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) expected error", bad)
		}
	}
}
