package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/config"
	"github.com/mgpai22/subforge/internal/ffmpeg"
	"github.com/mgpai22/subforge/internal/logging"
	"github.com/mgpai22/subforge/internal/timecode"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subforge",
	Short: "Subtitle timeline editor with libass previews",
	Long: `Subforge loads ASS (and SRT/VTT) subtitle tracks, answers which cues are
on screen at any instant, lets you position and restyle cues over a video
and previews the result through ffmpeg's libass renderer.

Settings come from subforge.yaml, SUBFORGE_* environment variables and a
.env file in the working directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default: ./subforge.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

// ffmpeg binaries from config, environment or PATH
func locateFFmpeg(ctx context.Context) (ffmpeg.BinaryPaths, error) {
	locator := ffmpeg.NewLocator(ffmpeg.BinaryPaths{
		FFmpeg:  cfg.FFmpeg.FFmpegPath,
		FFprobe: cfg.FFmpeg.FFprobePath,
	}, cfg.FFmpeg.AllowDownload)

	paths, err := locator.Locate(ctx)
	if err != nil {
		return ffmpeg.BinaryPaths{}, err
	}
	logger.Debugw("Using ffmpeg", "ffmpeg", paths.FFmpeg, "ffprobe", paths.FFprobe)
	return paths, nil
}

// accepts seconds ("12.5") or an ASS timestamp ("0:00:12.50")
func parseTimeArg(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ":") {
		return timecode.ParseTimestampStrict(raw)
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(t) || t < 0 {
		return 0, fmt.Errorf("invalid time %q: use seconds or H:MM:SS.cc", raw)
	}
	return t, nil
}
