package tokenizer

import (
	"testing"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		input    string
		expected Token
	}{
		{"Pitch_60", Token{Type: TypePitch, Value: "60"}},
		{"Bar_None", Token{Type: TypeBar, Value: "None"}},
		{"Position_12", Token{Type: TypePosition, Value: "12"}},
		{"Program_-1", Token{Type: TypeProgram, Value: "-1"}},
		{"Duration_1.4", Token{Type: TypeDuration, Value: "1.4"}},
		{"TimeSig_6/8", Token{Type: TypeTimeSig, Value: "6/8"}},
		{"Tempo_120", Token{Type: TypeTempo, Value: "120"}},
		{"Chord_maj", Token{Type: TypeChord, Value: "maj"}},
		{"Rest_2.0", Token{Type: TypeRest, Value: "2.0"}},
		{"PAD", Token{Type: TypeUnknown, Value: "PAD"}},
		{"Nonsense_1", Token{Type: TypeUnknown, Value: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseToken(tt.input)
			if result != tt.expected {
				t.Errorf("ParseToken(%q) = %+v, want %+v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: TypeVelocity, Value: "100"}
	if got := tok.String(); got != "Velocity_100" {
		t.Errorf("String() = %q, want %q", got, "Velocity_100")
	}
}

func TestTokenStringRoundTrip(t *testing.T) {
	inputs := []string{"Bar_None", "Position_0", "Program_0", "Pitch_60", "Velocity_99", "Duration_1.0"}
	tokens := ParseTokens(inputs)
	outputs := TokenStrings(tokens)
	for i := range inputs {
		if outputs[i] != inputs[i] {
			t.Errorf("round trip of %q gave %q", inputs[i], outputs[i])
		}
	}
}

func TestTokenInt(t *testing.T) {
	if v, err := (Token{Type: TypePitch, Value: "60"}).Int(); err != nil || v != 60 {
		t.Errorf("Int() = %d, %v, want 60, nil", v, err)
	}
	if _, err := (Token{Type: TypePitch, Value: "sixty"}).Int(); err == nil {
		t.Error("Int() on corrupt payload should fail")
	}
}

func TestTokenBeatsSubdivision(t *testing.T) {
	beats, sub, err := Token{Type: TypeDuration, Value: "3.4"}.BeatsSubdivision()
	if err != nil {
		t.Fatalf("BeatsSubdivision() error: %v", err)
	}
	if beats != 3 || sub != 4 {
		t.Errorf("BeatsSubdivision() = (%d, %d), want (3, 4)", beats, sub)
	}

	if _, _, err := (Token{Type: TypeDuration, Value: "3"}).BeatsSubdivision(); err == nil {
		t.Error("BeatsSubdivision() without separator should fail")
	}
	if _, _, err := (Token{Type: TypeDuration, Value: "a.b"}).BeatsSubdivision(); err == nil {
		t.Error("BeatsSubdivision() on corrupt payload should fail")
	}
}

func TestTokenTimeSignature(t *testing.T) {
	num, den, err := Token{Type: TypeTimeSig, Value: "6/8"}.TimeSignature()
	if err != nil {
		t.Fatalf("TimeSignature() error: %v", err)
	}
	if num != 6 || den != 8 {
		t.Errorf("TimeSignature() = %d/%d, want 6/8", num, den)
	}

	if _, _, err := (Token{Type: TypeTimeSig, Value: "44"}).TimeSignature(); err == nil {
		t.Error("TimeSignature() without separator should fail")
	}
}
