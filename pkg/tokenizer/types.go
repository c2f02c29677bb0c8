// Package tokenizer converts multi-track symbolic music into flat token
// sequences and back, using a bar/position representation with Program,
// Pitch, Velocity and Duration tokens.
package tokenizer

import "sort"

// Note represents a single played note with absolute tick times.
type Note struct {
	Pitch    int `json:"pitch"`
	Velocity int `json:"velocity"`
	Start    int `json:"start"` // start tick
	End      int `json:"end"`   // end tick
	Program  int `json:"program"` // MIDI program 0-127, -1 for drums
}

// Duration returns the note length in ticks.
func (n Note) Duration() int {
	return n.End - n.Start
}

// TempoChange is a tempo timeline entry.
type TempoChange struct {
	Tempo float64 `json:"tempo"` // BPM
	Tick  int     `json:"tick"`
}

// TimeSignatureChange is a time-signature timeline entry.
type TimeSignatureChange struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
	Tick        int `json:"tick"`
}

// Track is a per-program note bucket.
type Track struct {
	Program int    `json:"program"` // -1 for drums
	Name    string `json:"name,omitempty"`
	Notes   []Note `json:"notes"`
}

// Score holds everything the tokenizer reads or writes: per-program note
// buckets plus the global tempo and time-signature timelines.
type Score struct {
	TicksPerQuarter int                   `json:"ticksPerQuarter"`
	Tracks          []Track               `json:"tracks"`
	Tempos          []TempoChange         `json:"tempos"`
	TimeSignatures  []TimeSignatureChange `json:"timeSignatures"`
}

// Notes returns all notes across tracks, each stamped with its track's
// program, sorted by (start, pitch). This is the encoder's input order.
func (s *Score) Notes() []Note {
	var notes []Note
	for _, tr := range s.Tracks {
		for _, n := range tr.Notes {
			n.Program = tr.Program
			notes = append(notes, n)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}

// MaxTick returns the maximum note end tick across all tracks.
func (s *Score) MaxTick() int {
	max := 0
	for _, tr := range s.Tracks {
		for _, n := range tr.Notes {
			if n.End > max {
				max = n.End
			}
		}
	}
	return max
}

// TrackByProgram returns the track for a program, creating it if needed.
func (s *Score) TrackByProgram(program int) *Track {
	for i := range s.Tracks {
		if s.Tracks[i].Program == program {
			return &s.Tracks[i]
		}
	}
	name := ""
	if program == -1 {
		name = "Drums"
	}
	s.Tracks = append(s.Tracks, Track{Program: program, Name: name})
	return &s.Tracks[len(s.Tracks)-1]
}

// ChordEvent is a detected chord, as supplied by a ChordDetector.
type ChordEvent struct {
	Tick  int    `json:"tick"`
	Label string `json:"label"`
}

// ChordDetector supplies chord events for a flat non-drum note list.
// Implementations live outside this package; see pkg/chords.
type ChordDetector interface {
	Detect(notes []Note, ticksPerQuarter int) []ChordEvent
}

// ReduceTimeSignature maps a time signature onto the supported alphabet.
// Signatures whose denominator is already a power of two pass through
// unchanged. Otherwise the denominator is moved to the nearest power of two
// (ties toward the lower one) and the numerator is rescaled proportionally,
// rounded to the nearest integer with a floor of 1.
func ReduceTimeSignature(numerator, denominator int) (int, int) {
	if numerator < 1 {
		numerator = 1
	}
	if denominator < 1 {
		denominator = 1
	}
	if denominator&(denominator-1) == 0 {
		return numerator, denominator
	}
	lower := 1
	for lower*2 < denominator {
		lower *= 2
	}
	upper := lower * 2
	target := lower
	if upper-denominator < denominator-lower {
		target = upper
	}
	numerator = (numerator*target + denominator/2) / denominator
	if numerator < 1 {
		numerator = 1
	}
	return numerator, target
}
