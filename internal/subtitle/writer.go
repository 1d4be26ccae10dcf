package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subforge/internal/timecode"
)

// interface for serialising cues to a subtitle format
type Writer interface {
	Write(w io.Writer, cues []Cue) error
}

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// script resolution of written tracks. override tag positions are in these units
const (
	DefaultPlayResX = 1920
	DefaultPlayResY = 1080
)

// Advanced SubStation Alpha format. cue position and style become override
// tags; hidden cues are written as Comment events so they survive a reload
type ASSWriter struct {
	Title    string
	PlayResX int
	PlayResY int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return NewASSWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func NewASSWriter() *ASSWriter {
	return &ASSWriter{
		Title:    "Subforge Track",
		PlayResX: DefaultPlayResX,
		PlayResY: DefaultPlayResY,
	}
}

// writes cues to path in the given format, creating parent directories
func WriteFile(path string, format Format, cues []Cue) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	buf := bufio.NewWriter(file)
	if err := writer.Write(buf, cues); err != nil {
		return err
	}
	return buf.Flush()
}

// Omitted returns the ids of cues a format cannot carry. SRT and VTT have no
// way to mark a cue hidden, so hidden cues are left out of them.
func Omitted(format Format, cues []Cue) []int {
	if format == FormatASS {
		return nil
	}
	var ids []int
	for _, cue := range cues {
		if !cue.Visible {
			ids = append(ids, cue.ID)
		}
	}
	return ids
}

// renders cues as an ASS script, the track text fed to the overlay renderer
func RenderASS(cues []Cue) string {
	var sb strings.Builder
	_ = NewASSWriter().Write(&sb, cues)
	return sb.String()
}

func (w *SRTWriter) Write(out io.Writer, cues []Cue) error {
	n := 0
	for _, cue := range cues {
		if !cue.Visible {
			continue
		}
		n++
		if _, err := fmt.Fprintf(out, "%d\n%s --> %s\n%s\n\n",
			n,
			timecode.FormatSRT(cue.Start),
			timecode.FormatSRT(cue.End),
			cue.Text,
		); err != nil {
			return err
		}
	}
	return nil
}

func (w *VTTWriter) Write(out io.Writer, cues []Cue) error {
	if _, err := io.WriteString(out, "WEBVTT\n\n"); err != nil {
		return err
	}

	for _, cue := range cues {
		if !cue.Visible {
			continue
		}
		// line/position settings carry the cue anchor
		if _, err := fmt.Fprintf(out, "%d\n%s --> %s position:%s%% line:%s%%\n%s\n\n",
			cue.ID,
			timecode.FormatVTT(cue.Start),
			timecode.FormatVTT(cue.End),
			percent(cue.X),
			percent(cue.Y),
			cue.Text,
		); err != nil {
			return err
		}
	}
	return nil
}

func (w *ASSWriter) Write(out io.Writer, cues []Cue) error {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", w.PlayResX))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n", w.PlayResY))
	sb.WriteString("WrapStyle: 0\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n\n")

	// BorderStyle 3 draws an opaque box in OutlineColour behind the text
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H4C000000,&H00000000,0,0,0,0,100,100,0,0,3,4,0,5,10,10,10,1\n\n",
		DefaultStyle.FontFamily, DefaultStyle.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range cues {
		event := "Dialogue"
		if !cue.Visible {
			event = "Comment"
		}
		sb.WriteString(fmt.Sprintf("%s: 0,%s,%s,Default,,0,0,0,,%s%s\n",
			event,
			timecode.FormatASS(cue.Start),
			timecode.FormatASS(cue.End),
			w.overrideTags(cue),
			escapeASSText(cue.Text)))
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

func (w *ASSWriter) overrideTags(cue Cue) string {
	var tags strings.Builder
	tags.WriteString("{\\an5")
	tags.WriteString(fmt.Sprintf("\\pos(%d,%d)",
		scale(cue.X, w.PlayResX),
		scale(cue.Y, w.PlayResY)))

	if cue.FontFamily != "" {
		tags.WriteString("\\fn" + cue.FontFamily)
	}
	if cue.FontSize > 0 {
		tags.WriteString(fmt.Sprintf("\\fs%d", cue.FontSize))
	}
	if c, err := ParseColor(cue.Color); err == nil {
		tags.WriteString("\\1c" + c.ASSColor())
	}
	if bg, err := ParseColor(cue.BackgroundColor); err == nil {
		tags.WriteString("\\3c" + bg.ASSColor() + "\\3a" + bg.ASSAlpha())
	}
	tags.WriteString("}")

	return tags.String()
}

func scale(pct float64, size int) int {
	return int(math.Round(clampPercent(pct) / 100 * float64(size)))
}

func percent(v float64) string {
	return fmt.Sprintf("%g", clampPercent(v))
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
