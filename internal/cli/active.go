package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subforge/internal/editor"
	"github.com/mgpai22/subforge/internal/store"
	"github.com/mgpai22/subforge/internal/subtitle"
	"github.com/mgpai22/subforge/internal/timecode"
)

var activeCmd = &cobra.Command{
	Use:   "active [subtitle_file]",
	Short: "Show the cues visible at a given time",
	Long: `Print the cues whose time window contains the given instant. Both ends of
a window are inclusive and overlapping cues are listed in file order.

Examples:
  subforge active episode.ass --at 12.5
  subforge active episode.ass --at 0:01:02.00`,
	Args: cobra.ExactArgs(1),
	RunE: runActive,
}

func init() {
	rootCmd.AddCommand(activeCmd)

	activeCmd.Flags().String("at", "0", "Time in seconds or H:MM:SS.cc")
}

func runActive(cmd *cobra.Command, args []string) error {
	atStr, _ := cmd.Flags().GetString("at")
	at, err := parseTimeArg(atStr)
	if err != nil {
		return err
	}

	track, err := subtitle.Open(args[0])
	if err != nil {
		return err
	}

	st := store.New()
	st.ReplaceAll(track.Cues)

	out := cmd.OutOrStdout()
	active := st.ActiveAt(at)
	if len(active) == 0 {
		fmt.Fprintf(out, "no cues at %s\n", timecode.FormatTime(at))
		return nil
	}
	for _, c := range active {
		fmt.Fprintln(out, editor.FormatCue(c, false))
	}
	return nil
}
