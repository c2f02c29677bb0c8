package tokenizer

import (
	"strings"
	"testing"
)

func singleNoteScore(td int) *Score {
	return &Score{
		TicksPerQuarter: td,
		Tracks: []Track{{
			Program: 0,
			Notes:   []Note{{Pitch: 60, Velocity: 100, Start: 0, End: 480}},
		}},
		Tempos:         []TempoChange{{Tempo: 120}},
		TimeSignatures: []TimeSignatureChange{{Numerator: 4, Denominator: 4}},
	}
}

func encodeStrings(t *testing.T, tok *Tokenizer, score *Score) []string {
	t.Helper()
	tokens, err := tok.Encode(score)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	return TokenStrings(tokens)
}

func TestEncodeSingleNote(t *testing.T) {
	tok := New(DefaultConfig())
	got := encodeStrings(t, tok, singleNoteScore(480))

	want := []string{"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncodeRejectsBadTimeDivision(t *testing.T) {
	tok := New(DefaultConfig())
	score := singleNoteScore(487) // not divisible by the max resolution
	if _, err := tok.Encode(score); err == nil {
		t.Error("Encode() should reject a time division not divisible by the max resolution")
	}
	if _, err := tok.Encode(nil); err == nil {
		t.Error("Encode() should reject a nil score")
	}
}

func TestEncodeBarCatchUp(t *testing.T) {
	tok := New(DefaultConfig())
	ticksPerBar := 480 * 4
	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{{
			Program: 0,
			Notes: []Note{
				{Pitch: 60, Velocity: 100, Start: 0, End: 480},
				{Pitch: 62, Velocity: 100, Start: 3 * ticksPerBar, End: 3*ticksPerBar + 480},
			},
		}},
	}
	got := encodeStrings(t, tok, score)

	// Bars 1 and 2 are empty: the second note is preceded by exactly three
	// consecutive Bar tokens and then its own Position token.
	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "Duration_1.0 Bar_None Bar_None Bar_None Position_0 Program_0 Pitch_62") {
		t.Errorf("bar catch-up missing in %v", got)
	}
	total := strings.Count(joined, "Bar_None")
	if total != 4 {
		t.Errorf("got %d Bar tokens, want 4", total)
	}
}

func TestEncodeBoundedBarIndices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBars = 64
	tok := New(cfg)

	score := singleNoteScore(480)
	score.Tracks[0].Notes = append(score.Tracks[0].Notes,
		Note{Pitch: 62, Velocity: 100, Start: 480 * 4, End: 480*4 + 480})
	got := encodeStrings(t, tok, score)

	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "Bar_0") || !strings.Contains(joined, "Bar_1") {
		t.Errorf("expected indexed Bar tokens in %v", got)
	}
}

func TestEncodeTempoAfterBar(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTempo = true
	tok := New(cfg)

	ticksPerBar := 480 * 4
	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{{
			Program: 0,
			Notes: []Note{
				{Pitch: 60, Velocity: 100, Start: 0, End: 480},
				{Pitch: 62, Velocity: 100, Start: ticksPerBar, End: ticksPerBar + 480},
			},
		}},
		Tempos: []TempoChange{{Tempo: 120}, {Tempo: 150, Tick: ticksPerBar}},
	}
	got := encodeStrings(t, tok, score)

	// Bar always serializes before the tempo-anchored Position, which
	// precedes the Tempo token, at both time steps.
	want := []string{
		"Bar_None", "Position_0", "Tempo_120",
		"Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
		"Bar_None", "Position_0", "Tempo_150",
		"Position_0", "Program_0", "Pitch_62", "Velocity_100", "Duration_1.0",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncodeTimeSignatureAfterBar(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTimeSignature = true
	tok := New(cfg)

	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{{
			Program: 0,
			Notes:   []Note{{Pitch: 60, Velocity: 100, Start: 0, End: 480}},
		}},
		TimeSignatures: []TimeSignatureChange{{Numerator: 3, Denominator: 4}},
	}
	got := encodeStrings(t, tok, score)

	want := []string{"Bar_None", "TimeSig_3/4", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncodeMidBarChangeNotTokenized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTempo = true
	tok := New(cfg)

	// The second note shares the first note's bar, so the tempo change
	// between them produces no Tempo token; the change is adopted silently.
	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{{
			Program: 0,
			Notes: []Note{
				{Pitch: 60, Velocity: 100, Start: 0, End: 480},
				{Pitch: 62, Velocity: 100, Start: 480, End: 960},
			},
		}},
		Tempos: []TempoChange{{Tempo: 120}, {Tempo: 180, Tick: 240}},
	}
	got := strings.Join(encodeStrings(t, tok, score), " ")

	if strings.Contains(got, "Tempo_180") {
		t.Errorf("mid-bar tempo change should not be tokenized: %v", got)
	}
	if strings.Count(got, "Tempo_") != 1 {
		t.Errorf("want exactly one Tempo token, got %v", got)
	}
}

func TestEncodeDurationBinning(t *testing.T) {
	tok := New(DefaultConfig())
	tests := []struct {
		name     string
		duration int
		expected string
	}{
		{"exact bin", 480, "Duration_1.0"},
		{"nearest bin", 500, "Duration_1.0"},
		{"tie to lower index", 90, "Duration_0.1"},
		{"beyond table", 100000, "Duration_12.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := singleNoteScore(480)
			score.Tracks[0].Notes[0].End = tt.duration
			got := encodeStrings(t, tok, score)
			if got[len(got)-1] != tt.expected {
				t.Errorf("duration token = %q, want %q", got[len(got)-1], tt.expected)
			}
		})
	}
}

func TestEncodeMultiTrackOrdering(t *testing.T) {
	tok := New(DefaultConfig())

	// Same start tick across tracks: pitch breaks the tie, so the drum
	// note (pitch 36) tokenizes before the piano note (pitch 60).
	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{
			{Program: 0, Notes: []Note{{Pitch: 60, Velocity: 100, Start: 0, End: 480}}},
			{Program: -1, Notes: []Note{{Pitch: 36, Velocity: 110, Start: 0, End: 240}}},
		},
	}
	got := encodeStrings(t, tok, score)

	want := []string{
		"Bar_None",
		"Position_0", "Program_-1", "Pitch_36", "Velocity_110", "Duration_0.4",
		"Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

// mockChordDetector implements ChordDetector for testing
type mockChordDetector struct {
	events []ChordEvent
}

func (m *mockChordDetector) Detect(notes []Note, ticksPerQuarter int) []ChordEvent {
	return m.events
}

func TestEncodeChordEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseChord = true
	tok := New(cfg)
	tok.SetChordDetector(&mockChordDetector{
		events: []ChordEvent{{Tick: 0, Label: "maj"}},
	})

	got := encodeStrings(t, tok, singleNoteScore(480))

	// The chord-anchored Position and the Chord token slot in between any
	// Bar/TimeSig/Tempo tokens and the note run at the same tick.
	want := []string{
		"Bar_None", "Position_0", "Chord_maj",
		"Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}
