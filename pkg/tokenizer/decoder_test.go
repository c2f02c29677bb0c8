package tokenizer

import "testing"

func decode(t *testing.T, tok *Tokenizer, tokens []string, td int) *Score {
	t.Helper()
	score, err := tok.DecodeStrings(tokens, td)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return score
}

func TestDecodeSingleNote(t *testing.T) {
	tok := New(DefaultConfig())
	score := decode(t, tok, []string{
		"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
	}, 480)

	if len(score.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(score.Tracks))
	}
	notes := score.Tracks[0].Notes
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	n := notes[0]
	if n.Pitch != 60 || n.Velocity != 100 || n.Start != 0 || n.End != 480 || n.Program != 0 {
		t.Errorf("note = %+v, want pitch 60 velocity 100 span [0,480) program 0", n)
	}
	if score.MaxTick() != 480 {
		t.Errorf("MaxTick() = %d, want 480", score.MaxTick())
	}

	// Default timelines materialize at tick 0 when nothing was recorded.
	if len(score.Tempos) != 1 || score.Tempos[0].Tempo != DefaultTempo || score.Tempos[0].Tick != 0 {
		t.Errorf("tempos = %+v, want single default at tick 0", score.Tempos)
	}
	if len(score.TimeSignatures) != 1 || score.TimeSignatures[0].Numerator != 4 {
		t.Errorf("time signatures = %+v, want single 4/4 at tick 0", score.TimeSignatures)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tok := New(DefaultConfig())
	score := &Score{
		TicksPerQuarter: 480,
		Tracks: []Track{
			{Program: 0, Notes: []Note{
				{Pitch: 60, Velocity: 99, Start: 0, End: 480},
				{Pitch: 64, Velocity: 99, Start: 0, End: 480},
				{Pitch: 67, Velocity: 79, Start: 960, End: 1200},
			}},
			{Program: -1, Notes: []Note{
				{Pitch: 36, Velocity: 127, Start: 0, End: 240},
			}},
		},
	}

	tokens, err := tok.Encode(score)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := tok.Decode(tokens, 480)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := score.Notes()
	got := back.Notes()
	if len(got) != len(want) {
		t.Fatalf("got %d notes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodeBarPositionTiming(t *testing.T) {
	tok := New(DefaultConfig())
	score := decode(t, tok, []string{
		"Bar_None", "Bar_None", "Position_8", "Program_0", "Pitch_60", "Velocity_100", "Duration_0.4",
	}, 480)

	// Second bar starts at 1920; position 8 adds 8 * 60 ticks.
	n := score.Tracks[0].Notes[0]
	if n.Start != 1920+8*60 {
		t.Errorf("note start = %d, want %d", n.Start, 1920+8*60)
	}
}

func TestDecodePositionBeforeAnyBar(t *testing.T) {
	tok := New(DefaultConfig())
	score := decode(t, tok, []string{
		"Position_4", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
	}, 480)

	n := score.Tracks[0].Notes[0]
	if n.Start != 4*60 {
		t.Errorf("note start = %d, want %d", n.Start, 4*60)
	}
}

func TestDecodeDropsIncompleteNotes(t *testing.T) {
	tok := New(DefaultConfig())

	tests := []struct {
		name   string
		tokens []string
	}{
		{"truncated at end", []string{"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100"}},
		{"no program", []string{"Bar_None", "Position_0", "Pitch_60", "Velocity_100", "Duration_1.0"}},
		{"velocity missing", []string{"Bar_None", "Position_0", "Program_0", "Pitch_60", "Duration_1.0", "Duration_1.0"}},
		{"pitch is last token", []string{"Bar_None", "Position_0", "Program_0", "Pitch_60"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := decode(t, tok, tt.tokens, 480)
			if len(score.Tracks) != 0 {
				t.Errorf("incomplete note run should decode to no notes, got %+v", score.Tracks)
			}
		})
	}
}

func TestDecodeCorruptPayloadFails(t *testing.T) {
	tok := New(DefaultConfig())

	tests := []struct {
		name   string
		tokens []string
	}{
		{"bad position", []string{"Bar_None", "Position_x"}},
		{"bad pitch", []string{"Bar_None", "Position_0", "Program_0", "Pitch_abc", "Velocity_100", "Duration_1.0"}},
		{"bad duration", []string{"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1,0"}},
		{"bad tempo", []string{"Tempo_fast"}},
		{"bad time signature", []string{"TimeSig_44"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tok.DecodeStrings(tt.tokens, 480); err == nil {
				t.Error("Decode() should fail on corrupt numeric payloads")
			}
		})
	}
}

func TestDecodeTempoReplay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTempo = true
	tok := New(cfg)

	score := decode(t, tok, []string{
		"Bar_None", "Position_0", "Tempo_150",
		"Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
		"Bar_None", "Position_0", "Tempo_150", // repeat is dropped
		"Bar_None", "Position_0", "Tempo_180",
	}, 480)

	if len(score.Tempos) != 2 {
		t.Fatalf("got %d tempo changes, want 2", len(score.Tempos))
	}
	if score.Tempos[0].Tempo != 150 || score.Tempos[0].Tick != 0 {
		t.Errorf("first tempo change = %+v, want 150 at tick 0", score.Tempos[0])
	}
	if score.Tempos[1].Tempo != 180 || score.Tempos[1].Tick != 2*1920 {
		t.Errorf("second tempo change = %+v, want 180 at tick %d", score.Tempos[1], 2*1920)
	}
	for i := 1; i < len(score.Tempos); i++ {
		if score.Tempos[i].Tick < score.Tempos[i-1].Tick {
			t.Error("tempo ticks must be nondecreasing")
		}
	}
}

func TestDecodeTimeSignatureReplay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTimeSignature = true
	tok := New(cfg)

	score := decode(t, tok, []string{
		"Bar_None", "TimeSig_3/4",
		"Bar_None", "TimeSig_3/4", // unchanged, dropped
		"Bar_None", "TimeSig_6/8",
	}, 480)

	if len(score.TimeSignatures) != 2 {
		t.Fatalf("got %d signature changes, want 2", len(score.TimeSignatures))
	}
	first := score.TimeSignatures[0]
	if first.Numerator != 3 || first.Denominator != 4 || first.Tick != 0 {
		t.Errorf("first signature = %+v, want 3/4 at tick 0", first)
	}
	second := score.TimeSignatures[1]
	if second.Numerator != 6 || second.Denominator != 8 {
		t.Errorf("second signature = %+v, want 6/8", second)
	}
}

func TestDecodeNumeratorOnlyChangeRecorded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseTimeSignature = true
	tok := New(cfg)

	// 4/4 -> 3/4 differs only in numerator and must still be recorded.
	score := decode(t, tok, []string{
		"Bar_None", "TimeSig_4/4", "Bar_None", "TimeSig_3/4",
	}, 480)

	last := score.TimeSignatures[len(score.TimeSignatures)-1]
	if last.Numerator != 3 || last.Denominator != 4 {
		t.Errorf("last signature = %+v, want 3/4", last)
	}
}

func TestDecodeBarLengthResync(t *testing.T) {
	tokens := []string{
		"Bar_None", "TimeSig_3/4",
		"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
	}

	cfg := DefaultConfig()
	cfg.UseTimeSignature = true
	frozen := decode(t, New(cfg), tokens, 480)
	if start := frozen.Tracks[0].Notes[0].Start; start != 1920 {
		t.Errorf("without resync, note start = %d, want 1920", start)
	}

	cfg.ResyncBarOnTimeSig = true
	resynced := decode(t, New(cfg), tokens, 480)
	if start := resynced.Tracks[0].Notes[0].Start; start != 3*480 {
		t.Errorf("with resync, note start = %d, want %d", start, 3*480)
	}
}

func TestDecodeRestAdvancesTime(t *testing.T) {
	tok := New(DefaultConfig())
	score := decode(t, tok, []string{
		"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_100", "Duration_1.0",
		"Rest_1.0",
		"Program_0", "Pitch_62", "Velocity_100", "Duration_1.0",
	}, 480)

	notes := score.Tracks[0].Notes
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	// The rest floors at the previous note's end (480) and then advances
	// one beat.
	if notes[1].Start != 960 {
		t.Errorf("note after rest starts at %d, want 960", notes[1].Start)
	}
}

func TestDecodeDrumBucket(t *testing.T) {
	tok := New(DefaultConfig())
	score := decode(t, tok, []string{
		"Bar_None", "Position_0", "Program_-1", "Pitch_36", "Velocity_127", "Duration_0.4",
	}, 480)

	if len(score.Tracks) != 1 || score.Tracks[0].Program != -1 {
		t.Fatalf("tracks = %+v, want single drum bucket", score.Tracks)
	}
	if score.Tracks[0].Name != "Drums" {
		t.Errorf("drum track name = %q, want Drums", score.Tracks[0].Name)
	}
}

func TestDecodeRejectsBadTimeDivision(t *testing.T) {
	tok := New(DefaultConfig())
	if _, err := tok.DecodeStrings([]string{"Bar_None"}, 100); err == nil {
		t.Error("Decode() should reject a time division not divisible by the max resolution")
	}
}
