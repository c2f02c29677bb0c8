package tokenizer

import (
	"fmt"
	"strconv"
)

// Vocabulary enumerates the full token alphabet for the configuration, in a
// fixed reproducible order: special tokens first, then Bar, Pitch, Velocity,
// Duration, Position, the enabled optional families, and Program. This list
// is the base alphabet for any downstream merge learning.
func (t *Tokenizer) Vocabulary() []string {
	var vocab []string

	vocab = append(vocab, t.cfg.SpecialTokens...)

	if t.cfg.NumBars > 0 {
		for i := 0; i < t.cfg.NumBars; i++ {
			vocab = append(vocab, "Bar_"+strconv.Itoa(i))
		}
	} else {
		vocab = append(vocab, "Bar_None")
	}

	for p := t.cfg.PitchMin; p <= t.cfg.PitchMax; p++ {
		vocab = append(vocab, "Pitch_"+strconv.Itoa(p))
	}

	for _, v := range t.cfg.Velocities() {
		vocab = append(vocab, "Velocity_"+strconv.Itoa(v))
	}

	for _, d := range t.durations {
		vocab = append(vocab, "Duration_"+d.Label())
	}

	// One bar of 4/4 at the finest resolution.
	for i := 0; i < t.cfg.MaxResolution()*4; i++ {
		vocab = append(vocab, "Position_"+strconv.Itoa(i))
	}

	if t.cfg.UseTimeSignature {
		for _, sig := range t.cfg.TimeSignatures() {
			vocab = append(vocab, fmt.Sprintf("TimeSig_%d/%d", sig[0], sig[1]))
		}
	}

	if t.cfg.UseChord {
		// Unrecognized chords are labeled by note count, 3 to 5 notes.
		for i := 3; i <= 5; i++ {
			vocab = append(vocab, "Chord_"+strconv.Itoa(i))
		}
		for _, q := range ChordQualities() {
			vocab = append(vocab, "Chord_"+q)
		}
	}

	if t.cfg.UseTempo {
		for _, bpm := range t.cfg.Tempos() {
			vocab = append(vocab, "Tempo_"+strconv.Itoa(bpm))
		}
	}

	// Program is mandatory for this encoding; -1 is the drum bucket.
	for p := -1; p <= 127; p++ {
		vocab = append(vocab, "Program_"+strconv.Itoa(p))
	}

	return vocab
}

// chordQualityNames is the fixed ordering of named chord-quality templates.
// It must stay in sync with the templates used by the chord-detection
// collaborator so every label it produces is in the vocabulary.
var chordQualityNames = []string{
	"min", "maj", "dim", "aug", "sus2", "sus4",
	"7dom", "7min", "7maj", "7halfdim", "7dim", "7aug",
	"9maj", "9min",
}

// ChordQualities returns the names of the recognized chord-quality
// templates, in vocabulary order.
func ChordQualities() []string {
	return chordQualityNames
}
