package translate

import (
	"context"

	"github.com/mgpai22/subforge/internal/store"
	"github.com/mgpai22/subforge/internal/subtitle"
)

// TranslateStore replaces the text of every cue with a non-empty text by its
// translation and returns how many cues changed. Results for ids no longer in
// the store are dropped.
func TranslateStore(ctx context.Context, tr Translator, st *store.Store) (int, error) {
	var lines []Line
	for _, c := range st.Cues() {
		if c.Text == "" {
			continue
		}
		lines = append(lines, Line{ID: c.ID, Text: c.Text})
	}
	if len(lines) == 0 {
		return 0, nil
	}

	translated, err := tr.Translate(ctx, lines)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, l := range translated {
		if l.Text == "" {
			continue
		}
		if st.Update(l.ID, subtitle.Patch{Text: subtitle.String(l.Text)}) {
			updated++
		}
	}
	return updated, nil
}
