package tokenizer

import "sort"

// Preprocess snaps a score onto the tokenizer's alphabet in place: notes are
// sorted by (start, pitch) with out-of-range pitches dropped, velocities and
// tempos land on their nearest bins, time signatures are reduced, and both
// timelines gain a default tick-0 entry when empty. Encode assumes its input
// went through this.
func (t *Tokenizer) Preprocess(score *Score) {
	velocities := t.cfg.Velocities()

	for i := range score.Tracks {
		tr := &score.Tracks[i]
		kept := tr.Notes[:0]
		for _, n := range tr.Notes {
			if n.Pitch < t.cfg.PitchMin || n.Pitch > t.cfg.PitchMax {
				continue
			}
			n.Velocity = nearestValue(velocities, n.Velocity)
			kept = append(kept, n)
		}
		tr.Notes = kept
		sort.SliceStable(tr.Notes, func(a, b int) bool {
			if tr.Notes[a].Start != tr.Notes[b].Start {
				return tr.Notes[a].Start < tr.Notes[b].Start
			}
			return tr.Notes[a].Pitch < tr.Notes[b].Pitch
		})
	}

	if t.cfg.UseTempo {
		tempos := t.cfg.Tempos()
		for i := range score.Tempos {
			score.Tempos[i].Tempo = float64(nearestValue(tempos, int(score.Tempos[i].Tempo)))
		}
	}
	sort.SliceStable(score.Tempos, func(a, b int) bool {
		return score.Tempos[a].Tick < score.Tempos[b].Tick
	})
	if len(score.Tempos) == 0 {
		score.Tempos = []TempoChange{{Tempo: DefaultTempo}}
	}

	for i := range score.TimeSignatures {
		sig := &score.TimeSignatures[i]
		sig.Numerator, sig.Denominator = ReduceTimeSignature(sig.Numerator, sig.Denominator)
	}
	sort.SliceStable(score.TimeSignatures, func(a, b int) bool {
		return score.TimeSignatures[a].Tick < score.TimeSignatures[b].Tick
	})
	if len(score.TimeSignatures) == 0 {
		score.TimeSignatures = []TimeSignatureChange{{Numerator: DefaultNumerator, Denominator: DefaultDenominator}}
	}
}
