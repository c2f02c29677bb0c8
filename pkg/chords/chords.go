// Package chords detects chords in a flat note list, producing labeled
// events the tokenizer merges in by tick.
package chords

import (
	"sort"
	"strconv"

	"github.com/miniDevOn/MidiTok/pkg/tokenizer"
)

// Interval templates for the recognized chord qualities, as semitone
// offsets from the lowest pitch. Names must match tokenizer.ChordQualities.
var qualityTemplates = map[string][]int{
	"min":      {0, 3, 7},
	"maj":      {0, 4, 7},
	"dim":      {0, 3, 6},
	"aug":      {0, 4, 8},
	"sus2":     {0, 2, 7},
	"sus4":     {0, 5, 7},
	"7dom":     {0, 4, 7, 10},
	"7min":     {0, 3, 7, 10},
	"7maj":     {0, 4, 7, 11},
	"7halfdim": {0, 3, 6, 10},
	"7dim":     {0, 3, 6, 9},
	"7aug":     {0, 4, 8, 11},
	"9maj":     {0, 4, 7, 10, 14},
	"9min":     {0, 4, 7, 10, 13},
}

// Detector groups near-simultaneous notes and matches their interval
// patterns against the quality templates. Implements
// tokenizer.ChordDetector.
type Detector struct {
	// BeatResolution sets the onset window unit: notes starting within
	// OnsetOffset * (ticksPerQuarter / BeatResolution) ticks of the group
	// root belong to the same candidate chord.
	BeatResolution int
	OnsetOffset    int
	// SimulNotesLimit caps how many notes a candidate group may span.
	SimulNotesLimit int
	// OnlyKnown drops groups that match no quality template instead of
	// labeling them with their note count.
	OnlyKnown bool
}

// NewDetector returns a Detector with the reference defaults.
func NewDetector() *Detector {
	return &Detector{
		BeatResolution:  4,
		OnsetOffset:     1,
		SimulNotesLimit: 20,
	}
}

// Detect scans notes sorted by start tick and returns one event per
// detected chord of 3 to 5 notes: the matched quality name, or the note
// count for unrecognized shapes.
func (d *Detector) Detect(notes []tokenizer.Note, ticksPerQuarter int) []tokenizer.ChordEvent {
	window := d.OnsetOffset * ticksPerQuarter / d.BeatResolution
	var events []tokenizer.ChordEvent

	for i := 0; i < len(notes); {
		group := []tokenizer.Note{notes[i]}
		for j := i + 1; j < len(notes) && j < i+d.SimulNotesLimit; j++ {
			if notes[j].Start-notes[i].Start > window {
				break
			}
			group = append(group, notes[j])
		}

		label, ok := matchGroup(group)
		if d.OnlyKnown && ok {
			_, known := qualityTemplates[label]
			ok = known
		}
		if !ok {
			i++
			continue
		}
		events = append(events, tokenizer.ChordEvent{Tick: notes[i].Start, Label: label})
		i += len(group)
	}

	return events
}

// matchGroup labels a candidate group, or reports it unusable (fewer than 3
// or more than 5 distinct pitches).
func matchGroup(group []tokenizer.Note) (string, bool) {
	seen := make(map[int]bool, len(group))
	var pitches []int
	for _, n := range group {
		if !seen[n.Pitch] {
			seen[n.Pitch] = true
			pitches = append(pitches, n.Pitch)
		}
	}
	if len(pitches) < 3 || len(pitches) > 5 {
		return "", false
	}
	sort.Ints(pitches)

	intervals := make([]int, len(pitches))
	for i, p := range pitches {
		intervals[i] = p - pitches[0]
	}
	for _, name := range tokenizer.ChordQualities() {
		if equalIntervals(qualityTemplates[name], intervals) {
			return name, true
		}
	}
	return strconv.Itoa(len(pitches)), true
}

func equalIntervals(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
