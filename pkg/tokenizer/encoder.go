package tokenizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Tie-break ranks for events sharing a tick. Note-defining events all share
// the highest rank and keep their insertion order, which guarantees each
// note's own Position token precedes its Program/Pitch/Velocity/Duration
// quadruple.
const (
	rankBar = iota
	rankTimeSig
	rankTempoPosition
	rankTempo
	rankChordPosition
	rankChord
	_
	rankRest
	rankNote
)

// event is the intermediate tick-stamped form used only between the scan and
// token formatting. Never persisted.
type event struct {
	tok  Token
	tick int
	rank int
}

// Encode converts a score into the flat token sequence. Notes are processed
// in nondecreasing (start, pitch) order across all tracks; the score is
// expected to be preprocessed (see Preprocess) so every value is in
// vocabulary.
func (t *Tokenizer) Encode(score *Score) ([]Token, error) {
	if score == nil {
		return nil, errors.New("nil score")
	}
	timeDivision := score.TicksPerQuarter
	maxRes := t.cfg.MaxResolution()
	if timeDivision <= 0 || timeDivision%maxRes != 0 {
		return nil, fmt.Errorf("time division %d not divisible by max resolution %d", timeDivision, maxRes)
	}
	ticksPerSample := timeDivision / maxRes

	notes := score.Notes()
	events := make([]event, 0, len(notes)*5)

	// Scan state. The bar index starts at -1 so the first time step emits
	// the Bar token for bar 0; previousTick starts below any valid tick so
	// the first note always opens a new time step.
	previousTick := -1
	currentBar := -1

	// Both cursors consume their first timeline entry up front; the
	// signature in effect determines the bar length.
	currentTempo := DefaultTempo
	tempoIdx := 0
	if len(score.Tempos) > 0 {
		currentTempo = score.Tempos[0].Tempo
		tempoIdx = 1
	}
	sigNum, sigDen := DefaultNumerator, DefaultDenominator
	sigIdx := 0
	if len(score.TimeSignatures) > 0 {
		first := score.TimeSignatures[0]
		sigNum, sigDen = ReduceTimeSignature(first.Numerator, first.Denominator)
		sigIdx = 1
	}
	ticksPerBar := timeDivision * sigNum

	for _, n := range notes {
		if n.Start != previousTick {
			// Catch up on elapsed bars, one Bar token each.
			elapsed := n.Start/ticksPerBar - currentBar
			for i := 0; i < elapsed; i++ {
				bar := currentBar + i + 1
				value := "None"
				if t.cfg.NumBars > 0 {
					value = strconv.Itoa(bar)
				}
				events = append(events, event{
					tok:  Token{Type: TypeBar, Value: value},
					tick: bar * ticksPerBar,
					rank: rankBar,
				})
			}
			currentBar += elapsed

			if t.cfg.UseTimeSignature {
				for sigIdx < len(score.TimeSignatures) && score.TimeSignatures[sigIdx].Tick <= n.Start {
					change := score.TimeSignatures[sigIdx]
					sigNum, sigDen = ReduceTimeSignature(change.Numerator, change.Denominator)
					ticksPerBar = timeDivision * sigNum
					sigIdx++
				}
				if elapsed > 0 {
					// The signature in effect rides along right after the Bar run.
					events = append(events, event{
						tok:  Token{Type: TypeTimeSig, Value: fmt.Sprintf("%d/%d", sigNum, sigDen)},
						tick: n.Start,
						rank: rankTimeSig,
					})
				}
			}

			if t.cfg.UseTempo {
				for tempoIdx < len(score.Tempos) && score.Tempos[tempoIdx].Tick <= n.Start {
					currentTempo = score.Tempos[tempoIdx].Tempo
					tempoIdx++
				}
				if elapsed > 0 {
					pos := (n.Start % ticksPerBar) / ticksPerSample
					events = append(events,
						event{
							tok:  Token{Type: TypePosition, Value: strconv.Itoa(pos)},
							tick: n.Start,
							rank: rankTempoPosition,
						},
						event{
							tok:  Token{Type: TypeTempo, Value: strconv.Itoa(int(math.Round(currentTempo)))},
							tick: n.Start,
							rank: rankTempo,
						})
				}
			}

			previousTick = n.Start
		}

		// The note itself: its own Position, then the defining quadruple.
		pos := (n.Start % ticksPerBar) / ticksPerSample
		bin := t.nearestDuration(n.Duration(), timeDivision)
		events = append(events,
			event{tok: Token{Type: TypePosition, Value: strconv.Itoa(pos)}, tick: n.Start, rank: rankNote},
			event{tok: Token{Type: TypeProgram, Value: strconv.Itoa(n.Program)}, tick: n.Start, rank: rankNote},
			event{tok: Token{Type: TypePitch, Value: strconv.Itoa(n.Pitch)}, tick: n.Start, rank: rankNote},
			event{tok: Token{Type: TypeVelocity, Value: strconv.Itoa(n.Velocity)}, tick: n.Start, rank: rankNote},
			event{tok: Token{Type: TypeDuration, Value: bin.Label()}, tick: n.Start, rank: rankNote},
		)
	}

	if t.cfg.UseChord && t.chords != nil {
		var melodic []Note
		for _, n := range notes {
			if n.Program != -1 {
				melodic = append(melodic, n)
			}
		}
		for _, c := range t.chords.Detect(melodic, timeDivision) {
			pos := (c.Tick % ticksPerBar) / ticksPerSample
			events = append(events,
				event{tok: Token{Type: TypePosition, Value: strconv.Itoa(pos)}, tick: c.Tick, rank: rankChordPosition},
				event{tok: Token{Type: TypeChord, Value: c.Label}, tick: c.Tick, rank: rankChord},
			)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].rank < events[j].rank
	})

	tokens := make([]Token, len(events))
	for i, ev := range events {
		tokens[i] = ev.tok
	}
	return tokens, nil
}
