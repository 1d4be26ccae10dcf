package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// loads a subtitle file, choosing the importer from the extension
func Open(path string) (*Track, error) {
	format, ok := formatFromExtension(path)
	if !ok {
		return nil, fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}

	track, err := Load(format, data)
	if err != nil {
		return nil, err
	}
	track.Path = path

	return track, nil
}

// parses in-memory subtitle data of the given format
func Load(format Format, data []byte) (*Track, error) {
	track := &Track{Format: format, Raw: string(data)}

	var err error
	switch format {
	case FormatASS:
		track.Cues, track.Skipped = parseASS(track.Raw, DefaultStyle)
	case FormatSRT:
		track.Cues, err = ParseSRT(bytes.NewReader(data))
	case FormatVTT:
		track.Cues, err = ParseVTT(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return track, nil
}

func formatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ass", ".ssa":
		return FormatASS, true
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	default:
		return "", false
	}
}

// subtitle format based on file extension, SRT when unknown
func GetFormatFromExtension(path string) Format {
	if format, ok := formatFromExtension(path); ok {
		return format
	}
	return FormatSRT
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ass", "ssa":
		return FormatASS, nil
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use ass, srt, or vtt", s)
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatASS:
		return ".ass"
	case FormatVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}
