package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/subforge/internal/subtitle"
	"github.com/mgpai22/subforge/internal/timecode"
)

// one-line summary of a cue: `* 3 [00:01-00:04] (50, 80) 24px Arial "text"`
func FormatCue(c subtitle.Cue, selected bool) string {
	mark := " "
	if selected {
		mark = "*"
	}

	var flags []string
	if !c.Visible {
		flags = append(flags, "hidden")
	}
	if c.Inverted() {
		flags = append(flags, "inverted")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ",") + "]"
	}

	return fmt.Sprintf("%s %d [%s-%s] (%s, %s) %dpx %s %q%s",
		mark, c.ID,
		timecode.FormatTime(c.Start), timecode.FormatTime(c.End),
		formatPercent(c.X), formatPercent(c.Y),
		c.FontSize, c.FontFamily, c.Text, suffix,
	)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePatch turns a `set` field/value pair into a single-field patch.
// Times accept seconds or H:MM:SS.cc; text accepts \N for line breaks.
func ParsePatch(field, value string) (subtitle.Patch, error) {
	var p subtitle.Patch

	switch strings.ToLower(field) {
	case "text":
		p.Text = subtitle.String(strings.ReplaceAll(value, `\N`, "\n"))
	case "start", "end":
		t, err := parseSeconds(value)
		if err != nil {
			return p, err
		}
		if field == "start" {
			p.Start = &t
		} else {
			p.End = &t
		}
	case "x", "y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 100 {
			return p, fmt.Errorf("%s must be a number within 0..100", field)
		}
		if field == "x" {
			p.X = &v
		} else {
			p.Y = &v
		}
	case "size", "font_size", "fontsize":
		n, err := strconv.Atoi(value)
		if err != nil || n < subtitle.MinFontSize || n > subtitle.MaxFontSize {
			return p, fmt.Errorf("size must be an integer within %d..%d",
				subtitle.MinFontSize, subtitle.MaxFontSize)
		}
		p.FontSize = &n
	case "color":
		if _, err := subtitle.ParseColor(value); err != nil {
			return p, err
		}
		p.Color = subtitle.String(value)
	case "background", "bg":
		if _, err := subtitle.ParseColor(value); err != nil {
			return p, err
		}
		p.BackgroundColor = subtitle.String(value)
	case "font", "family":
		if value == "" {
			return p, fmt.Errorf("font family must not be empty")
		}
		p.FontFamily = subtitle.String(value)
	case "visible":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("visible must be true or false")
		}
		p.Visible = &b
	default:
		return p, fmt.Errorf("unknown field %q", field)
	}

	return p, nil
}

func parseSeconds(value string) (float64, error) {
	if strings.Contains(value, ":") {
		return timecode.ParseTimestampStrict(value)
	}
	t, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return t, nil
}
