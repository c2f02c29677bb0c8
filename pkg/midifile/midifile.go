// Package midifile adapts standard MIDI files to tokenizer scores and back
// using gomidi SMF parsing and generation.
package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/miniDevOn/MidiTok/pkg/tokenizer"
)

const drumChannel = 9 // MIDI channel 10, zero-based

// Parse reads SMF bytes into a Score: notes paired from note-on/note-off
// events and bucketed per program (channel 10 lands in the -1 drum bucket),
// plus the tempo and time-signature timelines.
func Parse(data []byte) (*tokenizer.Score, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	timeDivision := 480
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		timeDivision = int(mt.Resolution())
	}

	score := &tokenizer.Score{TicksPerQuarter: timeDivision}

	type pending struct {
		tick     int
		velocity int
		program  int
	}

	for _, track := range s.Tracks {
		tick := 0
		// Program in effect per channel; channel 10 is always drums.
		var programs [16]int
		open := make(map[[2]uint8]pending)

		for _, ev := range track {
			tick += int(ev.Delta)
			msg := ev.Message

			var ch, key, vel, prog uint8
			var bpm float64
			var num, den, cpt, dsqpq uint8

			switch {
			case msg.GetProgramChange(&ch, &prog):
				programs[ch] = int(prog)

			case msg.GetNoteStart(&ch, &key, &vel):
				program := programs[ch]
				if ch == drumChannel {
					program = -1
				}
				open[[2]uint8{ch, key}] = pending{tick: tick, velocity: int(vel), program: program}

			case msg.GetNoteEnd(&ch, &key):
				start, ok := open[[2]uint8{ch, key}]
				if !ok {
					continue
				}
				delete(open, [2]uint8{ch, key})
				bucket := score.TrackByProgram(start.program)
				bucket.Notes = append(bucket.Notes, tokenizer.Note{
					Pitch:    int(key),
					Velocity: start.velocity,
					Start:    start.tick,
					End:      tick,
					Program:  start.program,
				})

			case msg.GetMetaTempo(&bpm):
				score.Tempos = append(score.Tempos, tokenizer.TempoChange{Tempo: bpm, Tick: tick})

			case msg.GetMetaTimeSig(&num, &den, &cpt, &dsqpq):
				score.TimeSignatures = append(score.TimeSignatures, tokenizer.TimeSignatureChange{
					Numerator:   int(num),
					Denominator: int(den),
					Tick:        tick,
				})
			}
		}
	}

	for i := range score.Tracks {
		notes := score.Tracks[i].Notes
		sort.SliceStable(notes, func(a, b int) bool {
			if notes[a].Start != notes[b].Start {
				return notes[a].Start < notes[b].Start
			}
			return notes[a].Pitch < notes[b].Pitch
		})
	}
	sort.SliceStable(score.Tempos, func(a, b int) bool {
		return score.Tempos[a].Tick < score.Tempos[b].Tick
	})
	sort.SliceStable(score.TimeSignatures, func(a, b int) bool {
		return score.TimeSignatures[a].Tick < score.TimeSignatures[b].Tick
	})

	return score, nil
}

// ParseFile reads a MIDI file into a Score.
func ParseFile(path string) (*tokenizer.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Parse(data)
}

// trackEvent is an absolute-tick message awaiting delta encoding.
type trackEvent struct {
	tick int
	// ends sort before starts at the same tick so zero-length overlaps
	// re-trigger instead of swallowing each other
	end bool
	msg smf.Message
}

// Generate serializes a Score to SMF bytes: one meta track carrying the
// tempo and time-signature timelines, then one track per program bucket.
// Drum buckets play on channel 10; other tracks get the remaining channels
// round-robin.
func Generate(score *tokenizer.Score) ([]byte, error) {
	if score == nil {
		return nil, errors.New("nil score")
	}
	timeDivision := score.TicksPerQuarter
	if timeDivision <= 0 {
		timeDivision = tokenizer.DefaultTimeDivision
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(timeDivision)

	var meta []trackEvent
	for _, tc := range score.Tempos {
		meta = append(meta, trackEvent{tick: tc.Tick, msg: smf.MetaTempo(tc.Tempo)})
	}
	for _, ts := range score.TimeSignatures {
		meta = append(meta, trackEvent{tick: ts.Tick, msg: smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator))})
	}
	if len(meta) == 0 {
		meta = append(meta,
			trackEvent{msg: smf.MetaTempo(tokenizer.DefaultTempo)},
			trackEvent{msg: smf.MetaMeter(tokenizer.DefaultNumerator, tokenizer.DefaultDenominator)},
		)
	}
	if err := addTrack(s, meta); err != nil {
		return nil, err
	}

	melodicChannel := 0
	for _, bucket := range score.Tracks {
		channel := uint8(drumChannel)
		program := bucket.Program
		if program != -1 {
			channel = uint8(melodicChannel)
			melodicChannel++
			if melodicChannel == drumChannel {
				melodicChannel++ // skip the drum channel
			}
			melodicChannel %= 16
		} else {
			program = 0
		}

		events := []trackEvent{{msg: smf.Message(midi.ProgramChange(channel, uint8(program)))}}
		for _, n := range bucket.Notes {
			events = append(events,
				trackEvent{tick: n.Start, msg: smf.Message(midi.NoteOn(channel, uint8(n.Pitch), uint8(n.Velocity)))},
				trackEvent{tick: n.End, end: true, msg: smf.Message(midi.NoteOff(channel, uint8(n.Pitch)))},
			)
		}
		if err := addTrack(s, events); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes a Score to a MIDI file.
func WriteFile(score *tokenizer.Score, path string) error {
	data, err := Generate(score)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func addTrack(s *smf.SMF, events []trackEvent) error {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].end && !events[j].end
	})

	var track smf.Track
	tick := 0
	for _, ev := range events {
		track.Add(uint32(ev.tick-tick), ev.msg)
		tick = ev.tick
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}
	return nil
}
