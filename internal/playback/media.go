package playback

import (
	"errors"
	"math"
	"time"
)

// the externally owned media element the clock reads from and drives
type Media interface {
	CurrentTime() float64 // seconds
	Duration() float64    // seconds, 0 when unknown
	Paused() bool
	Play() error
	Pause()
	SetCurrentTime(seconds float64)
}

var ErrNoMedia = errors.New("no media loaded")

// VirtualMedia is a media element without a decoder: its position advances
// with the wall clock while playing and stops at the end of the media.
type VirtualMedia struct {
	duration float64
	offset   float64   // position when playback last started or paused
	started  time.Time // zero when paused
	now      func() time.Time
}

func NewVirtualMedia(duration time.Duration) *VirtualMedia {
	return &VirtualMedia{
		duration: duration.Seconds(),
		now:      time.Now,
	}
}

// replaces the time source, for tests
func (m *VirtualMedia) SetClock(now func() time.Time) {
	m.now = now
}

func (m *VirtualMedia) CurrentTime() float64 {
	if m.started.IsZero() {
		return m.offset
	}
	pos := m.offset + m.now().Sub(m.started).Seconds()
	if m.duration > 0 && pos >= m.duration {
		// reaching the end pauses, like a media element firing "ended"
		m.offset = m.duration
		m.started = time.Time{}
		return m.duration
	}
	return pos
}

func (m *VirtualMedia) Duration() float64 {
	return m.duration
}

func (m *VirtualMedia) Paused() bool {
	m.CurrentTime()
	return m.started.IsZero()
}

func (m *VirtualMedia) Play() error {
	if m.duration <= 0 {
		return ErrNoMedia
	}
	if !m.started.IsZero() {
		return nil
	}
	if m.offset >= m.duration {
		m.offset = 0
	}
	m.started = m.now()
	return nil
}

func (m *VirtualMedia) Pause() {
	if m.started.IsZero() {
		return
	}
	m.offset = m.CurrentTime()
	m.started = time.Time{}
}

func (m *VirtualMedia) SetCurrentTime(seconds float64) {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if m.duration > 0 && seconds > m.duration {
		seconds = m.duration
	}
	m.offset = seconds
	if !m.started.IsZero() {
		m.started = m.now()
	}
}
