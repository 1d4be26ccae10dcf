package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/editor"
	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/render"
	"github.com/mgpai22/subforge/internal/video"
)

var editCmd = &cobra.Command{
	Use:   "edit [subtitle_file]",
	Short: "Edit cue timing, position and style interactively",
	Long: `Open a subtitle file in a line-based editor. Commands select cues, nudge
them around the frame, change text and style, drive a playback clock and
export the result. Type "help" for the command list.

With --video the clock follows the video's duration and "render" draws the
current frame with the subtitles burned in.

Examples:
  subforge edit episode.ass
  subforge edit episode.ass --video episode.mp4 --render`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("video", "", "Video file the subtitles belong to")
	editCmd.Flags().Bool("render", false, "Attach the ffmpeg overlay renderer")
	editCmd.Flags().Float64("duration", 0, "Timeline length in seconds when no video is given (default: last cue end)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	videoPath, _ := cmd.Flags().GetString("video")
	withRenderer, _ := cmd.Flags().GetBool("render")
	duration, _ := cmd.Flags().GetFloat64("duration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session, renderer, err := openSession(ctx, args[0], videoPath, duration, withRenderer)
	if err != nil {
		return err
	}
	if renderer != nil {
		defer func() { _ = renderer.Close() }()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d cues loaded. Type help for commands, quit to exit.\n",
		session.Store().Len())
	return repl(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout())
}

func repl(ctx context.Context, session *editor.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}

		result, err := session.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// openSession loads subtitles, sets up the playback media and optionally an
// ffmpeg renderer.
func openSession(
	ctx context.Context,
	subsPath, videoPath string,
	duration float64,
	withRenderer bool,
) (*editor.Session, *render.FFmpegRenderer, error) {
	session := editor.NewSession(cfg, logger)

	if _, err := session.LoadSubtitles(ctx, subsPath); err != nil {
		return nil, nil, fmt.Errorf("failed to load subtitles: %w", err)
	}

	var ffmpegPath string
	if videoPath != "" || withRenderer {
		paths, err := locateFFmpeg(ctx)
		if err != nil {
			return nil, nil, err
		}
		ffmpegPath = paths.FFmpeg

		if videoPath != "" {
			if _, err := session.LoadVideo(ctx, video.NewProber(paths.FFprobe), videoPath); err != nil {
				return nil, nil, fmt.Errorf("failed to load video: %w", err)
			}
		}
	}

	if videoPath == "" {
		if duration <= 0 {
			duration = timelineEnd(session)
		}
		session.SetMedia(playback.NewVirtualMedia(time.Duration(duration * float64(time.Second))))
	}

	if !withRenderer {
		return session, nil, nil
	}

	renderer := render.NewFFmpegRenderer(videoPath, ffmpegPath, logger)
	if err := session.SetRenderer(ctx, renderer); err != nil {
		return nil, nil, err
	}
	return session, renderer, nil
}

// latest cue end, never less than one second
func timelineEnd(session *editor.Session) float64 {
	end := 1.0
	for _, c := range session.Store().Cues() {
		if !math.IsNaN(c.End) && c.End > end {
			end = c.End
		}
	}
	return end
}
