package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Defaults matching the reference configuration.
const (
	DefaultTempo         = 120.0
	DefaultNumerator     = 4
	DefaultDenominator   = 4
	DefaultTimeDivision  = 384
	defaultVelocityBins  = 32
	defaultTempoBins     = 32
	defaultTempoMin      = 40
	defaultTempoMax      = 250
	defaultTimeSigMaxDen = 8
	defaultTimeSigNotes  = 2
	defaultPitchMin      = 21
	defaultPitchMax      = 108
)

// BeatRange assigns a resolution, in samples per beat, to a half-open range
// of beats [First, Last).
type BeatRange struct {
	First      int `json:"first"`
	Last       int `json:"last"`
	Resolution int `json:"resolution"`
}

// Config is the full tokenizer configuration. It alone determines the
// vocabulary, the type graph and the duration-bin table.
type Config struct {
	PitchMin     int         `json:"pitchMin"` // inclusive
	PitchMax     int         `json:"pitchMax"` // inclusive
	BeatRes      []BeatRange `json:"beatRes"`
	VelocityBins int         `json:"velocityBins"`

	TempoBins int     `json:"tempoBins"`
	TempoMin  float64 `json:"tempoMin"`
	TempoMax  float64 `json:"tempoMax"`

	// TimeSigMaxDenominator is the largest supported power-of-two
	// denominator; TimeSigNotes scales how many numerators each
	// denominator gets (numerators 1..denominator*TimeSigNotes).
	TimeSigMaxDenominator int `json:"timeSigMaxDenominator"`
	TimeSigNotes          int `json:"timeSigNotes"`

	UseTimeSignature bool `json:"useTimeSignature"`
	UseChord         bool `json:"useChord"`
	UseTempo         bool `json:"useTempo"`
	UseRest          bool `json:"useRest"`

	// NumBars bounds the Bar token indices; 0 means unbounded, which
	// yields a single Bar_None token.
	NumBars int `json:"numBars,omitempty"`

	// ResyncBarOnTimeSig makes the decoder recompute the bar length from
	// decoded TimeSig tokens. The encoder always derives bar lengths from
	// the source signature timeline; the historical decoder never did,
	// so this defaults to false.
	ResyncBarOnTimeSig bool `json:"resyncBarOnTimeSig,omitempty"`

	SpecialTokens []string `json:"specialTokens"`
}

// DefaultConfig returns the reference configuration: pitches 21-108, beat
// resolutions {0-4: 8, 4-12: 4}, 32 velocity bins, 32 tempo bins between 40
// and 250 BPM, time signatures up to x/8, all optional families disabled.
func DefaultConfig() Config {
	return Config{
		PitchMin: defaultPitchMin,
		PitchMax: defaultPitchMax,
		BeatRes: []BeatRange{
			{First: 0, Last: 4, Resolution: 8},
			{First: 4, Last: 12, Resolution: 4},
		},
		VelocityBins:          defaultVelocityBins,
		TempoBins:             defaultTempoBins,
		TempoMin:              defaultTempoMin,
		TempoMax:              defaultTempoMax,
		TimeSigMaxDenominator: defaultTimeSigMaxDen,
		TimeSigNotes:          defaultTimeSigNotes,
		SpecialTokens:         []string{"PAD", "BOS", "EOS", "MASK"},
	}
}

// normalize fills zero fields with defaults and enforces encoding
// constraints: Rest tokens are never produced by this representation, so the
// flag is forced off (the decoder still tolerates Rest tokens in input).
func (c *Config) normalize() {
	if len(c.BeatRes) == 0 {
		c.BeatRes = DefaultConfig().BeatRes
	}
	sort.Slice(c.BeatRes, func(i, j int) bool { return c.BeatRes[i].First < c.BeatRes[j].First })
	if c.VelocityBins <= 0 {
		c.VelocityBins = defaultVelocityBins
	}
	if c.TempoBins <= 0 {
		c.TempoBins = defaultTempoBins
	}
	if c.TempoMin <= 0 {
		c.TempoMin = defaultTempoMin
	}
	if c.TempoMax <= c.TempoMin {
		c.TempoMax = defaultTempoMax
	}
	if c.TimeSigMaxDenominator <= 0 {
		c.TimeSigMaxDenominator = defaultTimeSigMaxDen
	}
	if c.TimeSigNotes <= 0 {
		c.TimeSigNotes = defaultTimeSigNotes
	}
	if c.PitchMax <= c.PitchMin {
		c.PitchMin = defaultPitchMin
		c.PitchMax = defaultPitchMax
	}
	c.UseRest = false
}

// MaxResolution returns the finest configured resolution in samples per
// beat. Position indices and duration subdivisions count in units of
// time_division / MaxResolution ticks.
func (c *Config) MaxResolution() int {
	max := 1
	for _, r := range c.BeatRes {
		if r.Resolution > max {
			max = r.Resolution
		}
	}
	return max
}

// Velocities returns the velocity bin values: VelocityBins values evenly
// spread over (0, 127], truncated toward zero.
func (c *Config) Velocities() []int {
	v := make([]int, c.VelocityBins)
	for i := range v {
		v[i] = (i + 1) * 127 / c.VelocityBins
	}
	return v
}

// Tempos returns the tempo bin values: TempoBins values evenly spread over
// [TempoMin, TempoMax], truncated toward zero.
func (c *Config) Tempos() []int {
	t := make([]int, c.TempoBins)
	if c.TempoBins == 1 {
		t[0] = int(c.TempoMin)
		return t
	}
	step := (c.TempoMax - c.TempoMin) / float64(c.TempoBins-1)
	for i := range t {
		t[i] = int(c.TempoMin + float64(i)*step)
	}
	return t
}

// TimeSignatures returns every supported (numerator, denominator) pair:
// power-of-two denominators up to TimeSigMaxDenominator, each with
// numerators 1..denominator*TimeSigNotes.
func (c *Config) TimeSignatures() [][2]int {
	var sigs [][2]int
	for den := 1; den <= c.TimeSigMaxDenominator; den *= 2 {
		for num := 1; num <= den*c.TimeSigNotes; num++ {
			sigs = append(sigs, [2]int{num, den})
		}
	}
	return sigs
}

// DurationBin is one entry of the duration table. Subdivision counts
// ticks-per-sample units (i.e. 1/MaxResolution of a beat).
type DurationBin struct {
	Beats       int
	Subdivision int
}

// Label returns the beats.subdivision token payload.
func (d DurationBin) Label() string {
	return fmt.Sprintf("%d.%d", d.Beats, d.Subdivision)
}

// Ticks returns the bin's length for a given time division. The time
// division must be divisible by the configured maximum resolution.
func (d DurationBin) Ticks(timeDivision, maxResolution int) int {
	return d.Beats*timeDivision + d.Subdivision*(timeDivision/maxResolution)
}

// Durations builds the ascending duration-bin table from the beat-resolution
// ranges: within each range one bin per representable subdivision, plus a
// final whole-beats bin at the table's upper bound. The zero-length bin is
// excluded.
func (c *Config) Durations() []DurationBin {
	maxRes := c.MaxResolution()
	var bins []DurationBin
	lastBeat := 0
	for _, r := range c.BeatRes {
		for beat := r.First; beat < r.Last; beat++ {
			for pos := 0; pos < r.Resolution; pos++ {
				if beat == 0 && pos == 0 {
					continue
				}
				bins = append(bins, DurationBin{Beats: beat, Subdivision: pos * maxRes / r.Resolution})
			}
		}
		if r.Last > lastBeat {
			lastBeat = r.Last
		}
	}
	bins = append(bins, DurationBin{Beats: lastBeat, Subdivision: 0})
	return bins
}

// LoadConfig reads a configuration from a JSON file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// SaveConfig writes a configuration to a JSON file, creating parent
// directories as needed.
func SaveConfig(cfg Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
