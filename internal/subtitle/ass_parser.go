package subtitle

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/subforge/internal/timecode"
)

const (
	dialoguePrefix = "Dialogue:"
	commentPrefix  = "Comment:"

	// leading tag block written by ASSWriter for every cue
	cueTagsPrefix = "{\\an5\\pos("
)

// index of fields in a split event line
// Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
const (
	assStartField = 1
	assEndField   = 2
	assTextField  = 9

	assMinFields = 10
)

// Parse extracts the Dialogue events of an ASS/SSA script as cues.
//
// Lines with fewer than ten comma separated fields are skipped. Timestamps are
// not validated: a malformed one becomes NaN on the cue. Cue ids are assigned
// from 1 in file order and every cue gets DefaultStyle.
//
// Scripts written by ASSWriter round-trip: the leading position/style tag
// block is removed from the text and applied to the cue, and Comment events
// carrying that block come back as hidden cues.
func Parse(content string) []Cue {
	cues, _ := parseASS(content, DefaultStyle)
	return cues
}

// ParseReader reads r fully and parses it with Parse.
func ParseReader(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading ASS script: %w", err)
	}
	return Parse(string(data)), nil
}

// returns the cues and the number of Dialogue lines dropped for having too
// few fields
func parseASS(content string, style Style) ([]Cue, int) {
	cues := make([]Cue, 0)
	id := 1
	skipped := 0
	resX, resY := DefaultPlayResX, DefaultPlayResY

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		var (
			rest   string
			hidden bool
		)
		switch {
		case strings.HasPrefix(line, "PlayResX:"):
			resX = playRes(line, resX)
			continue
		case strings.HasPrefix(line, "PlayResY:"):
			resY = playRes(line, resY)
			continue
		case strings.HasPrefix(line, dialoguePrefix):
			rest = strings.TrimPrefix(line, dialoguePrefix)
		case strings.HasPrefix(line, commentPrefix):
			rest, hidden = strings.TrimPrefix(line, commentPrefix), true
		default:
			continue
		}

		fields := strings.Split(rest, ",")
		if len(fields) < assMinFields {
			if !hidden {
				skipped++
			}
			continue
		}

		text := strings.Join(fields[assTextField:], ",")
		// plain comments are notes, not cues
		if hidden && !strings.HasPrefix(text, cueTagsPrefix) {
			continue
		}

		start := timecode.ParseTimestamp(fields[assStartField])
		end := timecode.ParseTimestamp(fields[assEndField])
		cue := NewCue(id, start, end, "", style)

		if strings.HasPrefix(text, cueTagsPrefix) {
			if closing := strings.IndexByte(text, '}'); closing > 0 {
				cue = applyCueTags(cue, text[1:closing], resX, resY)
				text = text[closing+1:]
			}
		}
		cue.Text = unescapeASSText(text)
		cue.Visible = !hidden

		cues = append(cues, cue)
		id++
	}

	return cues, skipped
}

func playRes(line string, fallback int) int {
	_, value, _ := strings.Cut(line, ":")
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// applies the override tags written by ASSWriter.overrideTags. unknown or
// malformed tags are ignored
func applyCueTags(cue Cue, block string, resX, resY int) Cue {
	var (
		border      RGBA
		hasBorder   bool
		borderAlpha = 1.0
	)

	for _, tag := range strings.Split(block, "\\") {
		switch {
		case strings.HasPrefix(tag, "pos(") && strings.HasSuffix(tag, ")"):
			x, y, ok := strings.Cut(tag[len("pos("):len(tag)-1], ",")
			if !ok {
				continue
			}
			if px, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				cue.X = unscale(px, resX)
			}
			if py, err := strconv.ParseFloat(strings.TrimSpace(y), 64); err == nil {
				cue.Y = unscale(py, resY)
			}
		case strings.HasPrefix(tag, "fn"):
			if name := strings.TrimSpace(tag[2:]); name != "" {
				cue.FontFamily = name
			}
		case strings.HasPrefix(tag, "fs"):
			if size, err := strconv.Atoi(tag[2:]); err == nil && size > 0 {
				cue.FontSize = size
			}
		case strings.HasPrefix(tag, "1c"):
			if c, ok := parseASSColor(tag[2:]); ok {
				cue.Color = c.Hex()
			}
		case strings.HasPrefix(tag, "3c"):
			border, hasBorder = parseASSColor(tag[2:])
		case strings.HasPrefix(tag, "3a"):
			if a, ok := parseASSAlpha(tag[2:]); ok {
				borderAlpha = a
			}
		}
	}

	if hasBorder {
		border.A = borderAlpha
		cue.BackgroundColor = border.CSS()
	}
	return cue
}

// pixel coordinate back to percent, to two decimals
func unscale(px float64, size int) float64 {
	return math.Round(px/float64(size)*100*100) / 100
}

func unescapeASSText(text string) string {
	return strings.ReplaceAll(text, "\\N", "\n")
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}
