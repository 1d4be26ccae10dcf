package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// parses a WebVTT file into cues with default styling.
// NOTE and STYLE blocks are dropped, cue identifiers are ignored
func ParseVTT(r io.Reader) ([]Cue, error) {
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
	skipBlock := false

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			skipBlock = false
			flush()
			continue
		}
		if skipBlock {
			continue
		}

		if current == nil &&
			(strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE")) {
			skipBlock = true
			continue
		}

		if strings.Contains(line, "-->") {
			flush()
			start, end, err := parseCueTiming(line, ".")
			if err != nil {
				return nil, fmt.Errorf("invalid VTT timing at line %d: %w", lineNum, err)
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
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}
	flush()

	return cues, nil
}
