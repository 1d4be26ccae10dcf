package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mgpai22/subforge/internal/timecode"
)

// parses a SubRip file into cues with default styling
func ParseSRT(r io.Reader) ([]Cue, error) {
	var (
		cues      []Cue
		current   *Cue
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
		}

		if current == nil && strings.Contains(line, "-->") {
			start, end, err := parseCueTiming(line, ",")
			if err != nil {
				return nil, fmt.Errorf("invalid SRT timing at line %d: %w", lineNum, err)
			}
			cue := NewCue(len(cues)+1, start, end, "", DefaultStyle)
			current = &cue
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}
	flush()

	return cues, nil
}

// parses "start --> end [settings]". sep is the millisecond separator of the format
func parseCueTiming(line, sep string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing arrow in %q", line)
	}

	start, err := parseClock(strings.TrimSpace(parts[0]), sep)
	if err != nil {
		return 0, 0, err
	}

	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("missing end time in %q", line)
	}
	end, err := parseClock(endFields[0], sep)
	if err != nil {
		return 0, 0, err
	}

	return start, end, nil
}

func parseClock(raw, sep string) (float64, error) {
	raw = strings.Replace(raw, sep, ".", 1)
	if strings.Count(raw, ":") == 1 {
		raw = "0:" + raw
	}
	return timecode.ParseTimestampStrict(raw)
}
