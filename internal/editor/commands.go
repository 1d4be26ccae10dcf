package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/subtitle"
	"github.com/mgpai22/subforge/internal/timecode"
)

var ErrUnknownCommand = errors.New("unknown command")

const noSelection = "no cue selected"

const helpText = `commands:
  list                    all cues, * marks the selection
  active                  cues shown at the current time
  add                     new cue at the current time (selected)
  select <id>|none        change the selection
  set <field> <value>     edit the selected cue
                          fields: text start end x y size color background font visible
  move <dir> [coarse]     nudge the selection up/down/left/right
  wrap [chars]            break long selected text onto two lines
  delete [id]             remove a cue (default: the selection)
  play | pause | stop     transport
  seek <fraction>         jump to a fraction of the duration (0..1)
  time                    current position
  export <path>           write cues as .ass, .srt or .vtt
  render                  draw the current frame with the overlay renderer`

// Exec runs one command line and returns its output. Operations that need a
// selection report it in the output instead of failing.
func (s *Session) Exec(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(name) {
	case "help", "?":
		return helpText, nil
	case "list", "ls":
		return s.cmdList(), nil
	case "active":
		return s.cmdActive(), nil
	case "add":
		cue := s.clock.AddCue()
		return fmt.Sprintf("added cue %d at %s", cue.ID, timecode.FormatTime(cue.Start)), nil
	case "select":
		return s.cmdSelect(args)
	case "set":
		return s.cmdSet(rest)
	case "move":
		return s.cmdMove(args)
	case "wrap":
		return s.cmdWrap(args)
	case "delete", "rm":
		return s.cmdDelete(args)
	case "play":
		if !s.clock.Playing() {
			if err := s.clock.TogglePlayPause(); err != nil {
				return "", err
			}
		}
		return "playing from " + s.position(), nil
	case "pause":
		if s.clock.Playing() {
			if err := s.clock.TogglePlayPause(); err != nil {
				return "", err
			}
		}
		return "paused at " + s.position(), nil
	case "stop":
		s.clock.Stop()
		return "stopped", nil
	case "seek":
		return s.cmdSeek(args)
	case "time":
		return s.position(), nil
	case "export":
		return s.cmdExport(rest)
	case "render":
		ms, err := s.RenderFrame(ctx)
		if err != nil {
			return "", err
		}
		if lf, ok := s.renderer.(interface{ LastFrame() string }); ok && lf.LastFrame() != "" {
			return fmt.Sprintf("rendered %dms -> %s", ms, lf.LastFrame()), nil
		}
		return fmt.Sprintf("rendered %dms", ms), nil
	default:
		return "", fmt.Errorf("%w: %s (try help)", ErrUnknownCommand, name)
	}
}

func (s *Session) position() string {
	return timecode.FormatTime(s.clock.Time()) + " / " + timecode.FormatTime(s.clock.Duration())
}

func (s *Session) cmdList() string {
	cues := s.store.Cues()
	if len(cues) == 0 {
		return "no cues"
	}
	selected, hasSel := s.store.SelectedID()

	var sb strings.Builder
	for i, c := range cues {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(FormatCue(c, hasSel && c.ID == selected))
	}
	return sb.String()
}

func (s *Session) cmdActive() string {
	active := s.clock.ActiveCues()
	if len(active) == 0 {
		return "no active cues at " + timecode.FormatTime(s.clock.Time())
	}
	selected, hasSel := s.store.SelectedID()

	lines := make([]string, len(active))
	for i, c := range active {
		lines[i] = FormatCue(c, hasSel && c.ID == selected)
	}
	return strings.Join(lines, "\n")
}

func (s *Session) cmdSelect(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: select <id>|none")
	}
	if args[0] == "none" {
		s.store.ClearSelection()
		return "selection cleared", nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid cue id %q", args[0])
	}
	if !s.store.Select(id) {
		return fmt.Sprintf("no cue with id %d", id), nil
	}
	return fmt.Sprintf("selected cue %d", id), nil
}

func (s *Session) cmdSet(rest string) (string, error) {
	field, value, _ := strings.Cut(rest, " ")
	if field == "" {
		return "", fmt.Errorf("usage: set <field> <value>")
	}

	patch, err := ParsePatch(field, strings.TrimSpace(value))
	if err != nil {
		return "", err
	}

	id, ok := s.store.SelectedID()
	if !ok || !s.store.Update(id, patch) {
		return noSelection, nil
	}
	cue, _ := s.store.Selected()
	return FormatCue(cue, true), nil
}

func (s *Session) cmdMove(args []string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", fmt.Errorf("usage: move <up|down|left|right> [coarse]")
	}
	dir, err := playback.ParseDirection(args[0])
	if err != nil {
		return "", err
	}

	step := s.cfg.Editor.FineStep
	if len(args) == 2 {
		if args[1] != "coarse" {
			return "", fmt.Errorf("usage: move <up|down|left|right> [coarse]")
		}
		step = s.cfg.Editor.CoarseStep
	}

	if !s.clock.MoveSelected(dir, step) {
		return noSelection, nil
	}
	cue, _ := s.store.Selected()
	return fmt.Sprintf("cue %d at (%s, %s)", cue.ID, formatPercent(cue.X), formatPercent(cue.Y)), nil
}

func (s *Session) cmdWrap(args []string) (string, error) {
	maxChars := subtitle.DefaultMaxCharsPerLine
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid line length %q", args[0])
		}
		maxChars = n
	}

	cue, ok := s.store.Selected()
	if !ok {
		return noSelection, nil
	}
	s.store.Update(cue.ID, subtitle.Patch{Text: subtitle.String(subtitle.WrapText(cue.Text, maxChars))})
	cue, _ = s.store.Selected()
	return FormatCue(cue, true), nil
}

func (s *Session) cmdDelete(args []string) (string, error) {
	var id int
	switch len(args) {
	case 0:
		sel, ok := s.store.SelectedID()
		if !ok {
			return noSelection, nil
		}
		id = sel
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid cue id %q", args[0])
		}
		id = n
	default:
		return "", fmt.Errorf("usage: delete [id]")
	}

	if !s.store.Remove(id) {
		return fmt.Sprintf("no cue with id %d", id), nil
	}
	return fmt.Sprintf("deleted cue %d", id), nil
}

func (s *Session) cmdSeek(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: seek <fraction>")
	}
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(f) {
		return "", fmt.Errorf("invalid fraction %q", args[0])
	}
	if s.clock.Media() == nil {
		return "", playback.ErrNoMedia
	}
	s.clock.SeekTo(f)
	return s.position(), nil
}

func (s *Session) cmdExport(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("usage: export <path>")
	}
	format := subtitle.GetFormatFromExtension(path)
	cues := s.store.Cues()
	if err := subtitle.WriteFile(path, format, cues); err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}

	omitted := subtitle.Omitted(format, cues)
	written := len(cues) - len(omitted)
	s.logger.Infow("Exported subtitles", "path", path, "format", format, "cues", written)
	if len(omitted) > 0 {
		s.logger.Warnw("Hidden cues left out of export", "format", format, "ids", omitted)
		return fmt.Sprintf("wrote %d cues to %s, skipped %d hidden (ids %s)",
			written, path, len(omitted), joinIDs(omitted)), nil
	}
	return fmt.Sprintf("wrote %d cues to %s", written, path), nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
