package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert a subtitle file between ASS, SRT and VTT",
	Long: `Convert a subtitle file to another format. Cue positions and styles are
carried into ASS override tags and VTT cue settings; SRT keeps timing and
text only. Hidden cues are kept as ASS Comment events and left out of SRT
and VTT.

Examples:
  subforge convert episode.ass -f srt
  subforge convert episode.srt -f ass -o styled.ass --wrap 42`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	convertCmd.Flags().Int("wrap", 0, "Break lines longer than this many characters (0 keeps text as is)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	wrap, _ := cmd.Flags().GetInt("wrap")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if wrap < 0 {
		return fmt.Errorf("wrap must not be negative, got %d", wrap)
	}

	track, err := subtitle.Open(inputPath)
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + subtitle.GetExtensionForFormat(format)
		if outputPath == inputPath {
			outputPath = base + ".converted" + subtitle.GetExtensionForFormat(format)
		}
	}

	cues := track.Cues
	if wrap > 0 {
		for i := range cues {
			cues[i].Text = subtitle.WrapText(cues[i].Text, wrap)
		}
	}

	logger.Infow("Converting subtitles",
		"input", inputPath,
		"output", outputPath,
		"from", track.Format,
		"to", format,
		"cues", len(cues),
	)

	if err := subtitle.WriteFile(outputPath, format, cues); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if omitted := subtitle.Omitted(format, cues); len(omitted) > 0 {
		logger.Warnw("Hidden cues left out", "format", format, "ids", omitted)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s\n", absOutput)
	return nil
}
