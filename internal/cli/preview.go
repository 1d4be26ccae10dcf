package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/playback"
	"github.com/mgpai22/subforge/internal/render"
	"github.com/mgpai22/subforge/internal/timecode"
)

var previewCmd = &cobra.Command{
	Use:   "preview [subtitle_file]",
	Short: "Render PNG frames with the subtitles burned in",
	Long: `Render the subtitle track over a video (or a black canvas) with ffmpeg's
libass filter.

--at renders a single frame. --from/--to plays the range in real time and
renders one frame per tick at --fps until the range ends; frames that take
longer than a tick are skipped rather than queued.

Examples:
  subforge preview episode.ass --video episode.mp4 --at 12.5
  subforge preview episode.ass --from 0:00:10.00 --to 0:00:14.00 --fps 5 --out frames/`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("video", "", "Video file to draw on (default: black canvas)")
	previewCmd.Flags().String("at", "", "Render a single frame at this time")
	previewCmd.Flags().String("from", "0", "Range start")
	previewCmd.Flags().String("to", "", "Range end (default: last cue end)")
	previewCmd.Flags().Float64("fps", 0, "Frames per second for range previews (default from config)")
	previewCmd.Flags().String("out", "", "Frame directory (default from config)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	videoPath, _ := cmd.Flags().GetString("video")
	atStr, _ := cmd.Flags().GetString("at")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	fps, _ := cmd.Flags().GetFloat64("fps")
	outDir, _ := cmd.Flags().GetString("out")

	if outDir != "" {
		cfg.Editor.FramesDir = outDir
	}
	if fps <= 0 {
		fps = cfg.Editor.FPS
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session, renderer, err := openSession(ctx, args[0], videoPath, 0, true)
	if err != nil {
		return err
	}
	defer func() { _ = renderer.Close() }()

	out := cmd.OutOrStdout()

	if atStr != "" {
		at, err := parseTimeArg(atStr)
		if err != nil {
			return err
		}
		if err := renderer.RenderAt(ctx, timecode.Milliseconds(at)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Frame written: %s\n", renderer.LastFrame())
		return nil
	}

	from, err := parseTimeArg(fromStr)
	if err != nil {
		return err
	}
	to := session.Clock().Duration()
	if toStr != "" {
		if to, err = parseTimeArg(toStr); err != nil {
			return err
		}
	}
	if to <= from {
		return fmt.Errorf("range end %.2fs must be after start %.2fs", to, from)
	}

	// the range is played on its own media so playback pauses exactly at --to
	media := playback.NewVirtualMedia(time.Duration(to * float64(time.Second)))
	media.SetCurrentTime(from)
	if err := media.Play(); err != nil {
		return err
	}

	logger.Infow("Rendering preview",
		"from", from,
		"to", to,
		"fps", fps,
		"dir", cfg.Editor.FramesDir,
	)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	n, err := render.NewLoop(media, renderer).Run(loopCtx, render.Ticker(loopCtx, fps))
	if err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Fprintf(out, "Rendered %d frames into %s\n", n, cfg.Editor.FramesDir)
	return nil
}
