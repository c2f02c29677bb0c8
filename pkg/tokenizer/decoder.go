package tokenizer

import "fmt"

// Decode reconstructs a score from a token sequence for the given time
// division. The inverse is tolerant: a Pitch token without its
// full Program/Velocity/Duration surroundings is silently dropped (generated
// sequences routinely end mid-note), and unknown token types are no-ops.
// Corrupt numeric payloads are fatal.
func (t *Tokenizer) Decode(tokens []Token, timeDivision int) (*Score, error) {
	maxRes := t.cfg.MaxResolution()
	if timeDivision <= 0 || timeDivision%maxRes != 0 {
		return nil, fmt.Errorf("time division %d not divisible by max resolution %d", timeDivision, maxRes)
	}
	ticksPerSample := timeDivision / maxRes

	score := &Score{TicksPerQuarter: timeDivision}

	// Timelines start absent; the defaults below stand in for the last
	// recorded entry until a real one lands, and are materialized at tick
	// 0 during finalization only if nothing real was recorded.
	lastTempo := DefaultTempo
	lastNum, lastDen := DefaultNumerator, DefaultDenominator

	currentTick := 0
	currentBar := -1
	ticksPerBar := timeDivision * DefaultNumerator
	previousNoteEnd := 0

	for i, tok := range tokens {
		switch tok.Type {
		case TypeBar:
			currentBar++
			currentTick = currentBar * ticksPerBar

		case TypeRest:
			beats, sub, err := tok.BeatsSubdivision()
			if err != nil {
				return nil, err
			}
			// Successive rests never rewind past sounding notes.
			if currentTick < previousNoteEnd {
				currentTick = previousNoteEnd
			}
			currentTick += beats*timeDivision + sub*ticksPerSample
			currentBar = currentTick / ticksPerBar

		case TypePosition:
			idx, err := tok.Int()
			if err != nil {
				return nil, err
			}
			if currentBar == -1 {
				// Position before any Bar token: treat as bar 0.
				currentBar = 0
			}
			currentTick = currentBar*ticksPerBar + idx*ticksPerSample

		case TypeTempo:
			bpm, err := tok.Float()
			if err != nil {
				return nil, err
			}
			if bpm != lastTempo {
				score.Tempos = append(score.Tempos, TempoChange{Tempo: bpm, Tick: currentTick})
				lastTempo = bpm
			}

		case TypeTimeSig:
			num, den, err := tok.TimeSignature()
			if err != nil {
				return nil, err
			}
			if num != lastNum || den != lastDen {
				score.TimeSignatures = append(score.TimeSignatures, TimeSignatureChange{
					Numerator:   num,
					Denominator: den,
					Tick:        currentTick,
				})
				lastNum, lastDen = num, den
				if t.cfg.ResyncBarOnTimeSig {
					ticksPerBar = timeDivision * num
				}
			}

		case TypePitch:
			// A note exists only as a complete Program-Pitch-Velocity-
			// Duration run; anything short of that is dropped.
			if i < 1 || i+2 >= len(tokens) ||
				tokens[i-1].Type != TypeProgram ||
				tokens[i+1].Type != TypeVelocity ||
				tokens[i+2].Type != TypeDuration {
				continue
			}
			program, err := tokens[i-1].Int()
			if err != nil {
				return nil, err
			}
			pitch, err := tok.Int()
			if err != nil {
				return nil, err
			}
			velocity, err := tokens[i+1].Int()
			if err != nil {
				return nil, err
			}
			beats, sub, err := tokens[i+2].BeatsSubdivision()
			if err != nil {
				return nil, err
			}
			duration := beats*timeDivision + sub*ticksPerSample
			track := score.TrackByProgram(program)
			track.Notes = append(track.Notes, Note{
				Pitch:    pitch,
				Velocity: velocity,
				Start:    currentTick,
				End:      currentTick + duration,
				Program:  program,
			})
			if currentTick+duration > previousNoteEnd {
				previousNoteEnd = currentTick + duration
			}

		default:
			// Forward compatible: unknown and special tokens are no-ops.
		}
	}

	// Finalization: materialize the default if nothing was recorded, and
	// anchor the first entry to tick 0 either way.
	if len(score.Tempos) == 0 {
		score.Tempos = []TempoChange{{Tempo: DefaultTempo}}
	}
	score.Tempos[0].Tick = 0
	if len(score.TimeSignatures) == 0 {
		score.TimeSignatures = []TimeSignatureChange{{Numerator: DefaultNumerator, Denominator: DefaultDenominator}}
	}
	score.TimeSignatures[0].Tick = 0

	return score, nil
}

// DecodeStrings is Decode over wire-format token strings.
func (t *Tokenizer) DecodeStrings(tokens []string, timeDivision int) (*Score, error) {
	return t.Decode(ParseTokens(tokens), timeDivision)
}
