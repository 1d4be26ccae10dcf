package cli

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/editor"
	"github.com/mgpai22/subforge/internal/subtitle"
	"github.com/mgpai22/subforge/internal/timecode"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [subtitle_file]",
	Short: "List the cues of a subtitle file",
	Long: `Parse a subtitle file and print every cue with its timing, position and
style. Cues whose end precedes their start are flagged as inverted; they are
kept but never shown.

Examples:
  subforge inspect episode.ass
  subforge inspect episode.srt --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("json", false, "Print cues as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	track, err := subtitle.Open(args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(track.Cues)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s): %d cues\n", track.Path, track.Format, len(track.Cues))

	first, last := math.Inf(1), math.Inf(-1)
	inverted := 0
	for _, c := range track.Cues {
		fmt.Fprintln(out, editor.FormatCue(c, false))
		if c.Inverted() {
			inverted++
		}
		first = math.Min(first, c.Start)
		last = math.Max(last, c.End)
	}

	if len(track.Cues) > 0 && !math.IsNaN(first) && !math.IsNaN(last) {
		fmt.Fprintf(out, "span: %s - %s\n", timecode.FormatTime(first), timecode.FormatTime(last))
	}
	if inverted > 0 {
		fmt.Fprintf(out, "inverted cues: %d\n", inverted)
	}
	return nil
}
