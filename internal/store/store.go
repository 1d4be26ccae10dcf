// Package store holds the editable subtitle timeline: an ordered collection of
// cues and the id of the selected cue.
//
// The store is owned by a single caller (the editor session) and is not safe
// for concurrent use. Selection is kept as an id and resolved on every read,
// so an update is always visible through Selected.
package store

import (
	"github.com/mgpai22/subforge/internal/subtitle"
)

type Store struct {
	cues     []subtitle.Cue
	selected int
	hasSel   bool
	lastID   int
	style    subtitle.Style
}

type Option func(*Store)

// style used by NewCueAt
func WithStyle(style subtitle.Style) Option {
	return func(s *Store) {
		s.style = style
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		cues:  make([]subtitle.Cue, 0),
		style: subtitle.DefaultStyle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// appends cue at the end of the timeline. selection is not touched
func (s *Store) Add(cue subtitle.Cue) {
	s.cues = append(s.cues, cue)
	s.trackID(cue.ID)
}

// NewCueAt builds a default cue spanning DefaultDuration from t with a fresh
// id. The cue is not added.
func (s *Store) NewCueAt(t float64) subtitle.Cue {
	s.lastID++
	return subtitle.NewCue(s.lastID, t, t+subtitle.DefaultDuration, subtitle.DefaultText, s.style)
}

// replaces the whole timeline and clears the selection
func (s *Store) ReplaceAll(cues []subtitle.Cue) {
	s.cues = make([]subtitle.Cue, len(cues))
	copy(s.cues, cues)
	s.hasSel = false
	s.selected = 0
	for _, c := range cues {
		s.trackID(c.ID)
	}
}

// merges patch into the first cue with id. false when no cue matches
func (s *Store) Update(id int, patch subtitle.Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.cues[i] = patch.Apply(s.cues[i])
	return true
}

// removes the first cue with id, clearing the selection if it pointed there
func (s *Store) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.cues = append(s.cues[:i], s.cues[i+1:]...)
	if s.hasSel && s.selected == id {
		s.ClearSelection()
	}
	return true
}

// visible cues whose window contains t, in insertion order
func (s *Store) ActiveAt(t float64) []subtitle.Cue {
	active := make([]subtitle.Cue, 0)
	for _, c := range s.cues {
		if c.ActiveAt(t) {
			active = append(active, c)
		}
	}
	return active
}

// selects the cue with id. unknown ids leave the selection unchanged
func (s *Store) Select(id int) bool {
	if s.index(id) < 0 {
		return false
	}
	s.selected = id
	s.hasSel = true
	return true
}

func (s *Store) ClearSelection() {
	s.selected = 0
	s.hasSel = false
}

func (s *Store) SelectedID() (int, bool) {
	return s.selected, s.hasSel
}

// resolves the selected cue by id lookup
func (s *Store) Selected() (subtitle.Cue, bool) {
	if !s.hasSel {
		return subtitle.Cue{}, false
	}
	return s.Get(s.selected)
}

func (s *Store) Get(id int) (subtitle.Cue, bool) {
	i := s.index(id)
	if i < 0 {
		return subtitle.Cue{}, false
	}
	return s.cues[i], true
}

// copy of the timeline in insertion order
func (s *Store) Cues() []subtitle.Cue {
	out := make([]subtitle.Cue, len(s.cues))
	copy(out, s.cues)
	return out
}

func (s *Store) Len() int {
	return len(s.cues)
}

func (s *Store) index(id int) int {
	for i, c := range s.cues {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) trackID(id int) {
	if id > s.lastID {
		s.lastID = id
	}
}
