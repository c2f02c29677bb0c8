package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sequence is the on-disk form of a token sequence: the wire-format token
// strings plus the time division they were encoded at.
type Sequence struct {
	TimeDivision int      `json:"timeDivision"`
	Tokens       []string `json:"tokens"`
}

// LoadSequence reads a token sequence from a JSON file.
func LoadSequence(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if seq.TimeDivision == 0 {
		seq.TimeDivision = DefaultTimeDivision
	}
	return &seq, nil
}

// Save writes the sequence to a JSON file.
func (s *Sequence) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
