package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

var ErrNoVideoStream = errors.New("no video stream")

// reads container and stream metadata with ffprobe
type Prober struct {
	ffprobePath string
}

func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath}
}

// retrieves video file information
func (p *Prober) GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("failed to parse ffprobe output: invalid json")
	}
	doc := gjson.ParseBytes(data)

	stream := doc.Get(`streams.#(codec_type=="video")`)
	if !stream.Exists() {
		return nil, ErrNoVideoStream
	}

	info := &Info{
		Width:     int(stream.Get("width").Int()),
		Height:    int(stream.Get("height").Int()),
		Codec:     stream.Get("codec_name").String(),
		FrameRate: parseRate(stream.Get("r_frame_rate").String()),
		HasAudio:  doc.Get(`streams.#(codec_type=="audio")`).Exists(),
	}

	// format duration is a string; some containers only report it per stream
	raw := doc.Get("format.duration").String()
	if raw == "" {
		raw = stream.Get("duration").String()
	}
	if raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	return info, nil
}

// "30000/1001" -> 29.97. 0 when unknown
func parseRate(raw string) float64 {
	num, den, ok := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
