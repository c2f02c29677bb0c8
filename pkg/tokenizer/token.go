package tokenizer

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType identifies a token family.
type TokenType int

const (
	TypeUnknown TokenType = iota
	TypeBar
	TypePosition
	TypeProgram
	TypePitch
	TypeVelocity
	TypeDuration
	TypeTempo
	TypeTimeSig
	TypeChord
	TypeRest
	TypeSpecial
)

var typeNames = map[TokenType]string{
	TypeBar:      "Bar",
	TypePosition: "Position",
	TypeProgram:  "Program",
	TypePitch:    "Pitch",
	TypeVelocity: "Velocity",
	TypeDuration: "Duration",
	TypeTempo:    "Tempo",
	TypeTimeSig:  "TimeSig",
	TypeChord:    "Chord",
	TypeRest:     "Rest",
	TypeSpecial:  "Special",
}

var namesToType = func() map[string]TokenType {
	m := make(map[string]TokenType, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// String returns the textual type name used in the wire format.
func (t TokenType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// Token is one atomic Type_Value vocabulary unit.
type Token struct {
	Type  TokenType
	Value string
}

// String returns the canonical Type_Value wire form.
func (t Token) String() string {
	return t.Type.String() + "_" + t.Value
}

// ParseToken parses a Type_Value string into a Token. The type is resolved
// exactly once here; unrecognized types (including special tokens such as
// "PAD") come back as TypeUnknown or TypeSpecial and are skipped downstream.
func ParseToken(s string) Token {
	name, value, found := strings.Cut(s, "_")
	if !found {
		return Token{Type: TypeUnknown, Value: s}
	}
	typ, ok := namesToType[name]
	if !ok {
		return Token{Type: TypeUnknown, Value: value}
	}
	return Token{Type: typ, Value: value}
}

// ParseTokens parses a full wire-format sequence.
func ParseTokens(strs []string) []Token {
	tokens := make([]Token, len(strs))
	for i, s := range strs {
		tokens[i] = ParseToken(s)
	}
	return tokens
}

// TokenStrings renders tokens back to their wire form.
func TokenStrings(tokens []Token) []string {
	strs := make([]string, len(tokens))
	for i, t := range tokens {
		strs[i] = t.String()
	}
	return strs
}

// Int parses the token payload as an integer.
func (t Token) Int() (int, error) {
	v, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, fmt.Errorf("token %s: invalid integer payload: %w", t, err)
	}
	return v, nil
}

// Float parses the token payload as a float. Tempo payloads are written as
// integers but decoding accepts any numeric form.
func (t Token) Float() (float64, error) {
	v, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("token %s: invalid numeric payload: %w", t, err)
	}
	return v, nil
}

// BeatsSubdivision parses a beats.subdivision payload (Duration and Rest
// tokens). The subdivision counts ticks-per-sample units.
func (t Token) BeatsSubdivision() (beats, subdivision int, err error) {
	b, s, found := strings.Cut(t.Value, ".")
	if !found {
		return 0, 0, fmt.Errorf("token %s: want beats.subdivision payload", t)
	}
	if beats, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("token %s: invalid beats: %w", t, err)
	}
	if subdivision, err = strconv.Atoi(s); err != nil {
		return 0, 0, fmt.Errorf("token %s: invalid subdivision: %w", t, err)
	}
	return beats, subdivision, nil
}

// TimeSignature parses a numerator/denominator payload and reduces it.
func (t Token) TimeSignature() (numerator, denominator int, err error) {
	n, d, found := strings.Cut(t.Value, "/")
	if !found {
		return 0, 0, fmt.Errorf("token %s: want numerator/denominator payload", t)
	}
	if numerator, err = strconv.Atoi(n); err != nil {
		return 0, 0, fmt.Errorf("token %s: invalid numerator: %w", t, err)
	}
	if denominator, err = strconv.Atoi(d); err != nil {
		return 0, 0, fmt.Errorf("token %s: invalid denominator: %w", t, err)
	}
	numerator, denominator = ReduceTimeSignature(numerator, denominator)
	return numerator, denominator, nil
}
