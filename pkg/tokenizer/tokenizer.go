package tokenizer

// Tokenizer converts scores to token sequences and back for one fixed
// configuration. The duration-bin table is precomputed once; everything else
// is derived on demand.
type Tokenizer struct {
	cfg       Config
	durations []DurationBin
	chords    ChordDetector
}

// New creates a Tokenizer. The configuration is normalized first (defaults
// filled in, Rest forced off).
func New(cfg Config) *Tokenizer {
	cfg.normalize()
	return &Tokenizer{
		cfg:       cfg,
		durations: cfg.Durations(),
	}
}

// Config returns the normalized configuration.
func (t *Tokenizer) Config() Config {
	return t.cfg
}

// SetChordDetector sets the collaborator used to extract chord events during
// encoding. Without one, no Chord tokens are produced even when the Chord
// flag is enabled.
func (t *Tokenizer) SetChordDetector(d ChordDetector) {
	t.chords = d
}

// Durations returns the precomputed ascending duration-bin table.
func (t *Tokenizer) Durations() []DurationBin {
	return t.durations
}

// nearestDuration picks the bin with the minimum absolute tick distance to
// the given length; ties resolve to the lowest bin index.
func (t *Tokenizer) nearestDuration(ticks, timeDivision int) DurationBin {
	maxRes := t.cfg.MaxResolution()
	best := 0
	bestDist := -1
	for i, bin := range t.durations {
		dist := bin.Ticks(timeDivision, maxRes) - ticks
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return t.durations[best]
}

// nearestValue picks the closest entry of an ascending bin table, ties to
// the lower bin.
func nearestValue(bins []int, v int) int {
	best := bins[0]
	bestDist := -1
	for _, b := range bins {
		dist := b - v
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = b
			bestDist = dist
		}
	}
	return best
}
