// Package main is the entry point for the miditok CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miniDevOn/MidiTok/pkg/api"
	"github.com/miniDevOn/MidiTok/pkg/chords"
	"github.com/miniDevOn/MidiTok/pkg/midifile"
	"github.com/miniDevOn/MidiTok/pkg/tokenizer"
	"github.com/miniDevOn/MidiTok/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile  string
	configFile  string
	withTempo   bool
	withTimeSig bool
	withChords  bool
	numBars     int
	serverPort  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "miditok",
	Short: "Convert MIDI files to token sequences and back",
	Long: `miditok converts multi-track MIDI files into flat token sequences for
machine-learning pipelines, and reconstructs MIDI files from token sequences.

Notes become Program/Pitch/Velocity/Duration token runs anchored by Bar and
Position tokens; tempo and time-signature timelines ride along as optional
token families.

Examples:
  miditok tokenize song.mid -o song.json --tempo --timesig
  miditok detokenize song.json -o song.mid
  miditok vocab --tempo
  miditok check song.json
  miditok tui
  miditok serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <input.mid>",
	Short: "Convert a MIDI file to a token sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

var detokenizeCmd = &cobra.Command{
	Use:   "detokenize <input.json>",
	Short: "Reconstruct a MIDI file from a token sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetokenize,
}

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the token vocabulary",
	RunE:  runVocab,
}

var checkCmd = &cobra.Command{
	Use:   "check <input.json>",
	Short: "Report token-type transition violations in a sequence",
	RunE:  runCheck,
	Args:  cobra.ExactArgs(1),
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Tokenizer config file (JSON)")
	rootCmd.PersistentFlags().BoolVar(&withTempo, "tempo", false, "Enable Tempo tokens")
	rootCmd.PersistentFlags().BoolVar(&withTimeSig, "timesig", false, "Enable TimeSig tokens")
	rootCmd.PersistentFlags().BoolVar(&withChords, "chords", false, "Enable Chord tokens")
	rootCmd.PersistentFlags().IntVar(&numBars, "bars", 0, "Bound Bar token indices (0 = unbounded)")

	// tokenize command
	tokenizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output token file path")

	// detokenize command
	detokenizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(detokenizeCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func getTokenizer() (*tokenizer.Tokenizer, error) {
	cfg := tokenizer.DefaultConfig()
	if configFile != "" {
		loaded, err := tokenizer.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if withTempo {
		cfg.UseTempo = true
	}
	if withTimeSig {
		cfg.UseTimeSignature = true
	}
	if withChords {
		cfg.UseChord = true
	}
	if numBars > 0 {
		cfg.NumBars = numBars
	}

	t := tokenizer.New(cfg)
	if cfg.UseChord {
		t.SetChordDetector(chords.NewDetector())
	}
	return t, nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runTokenize(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	t, err := getTokenizer()
	if err != nil {
		return err
	}

	score, err := midifile.ParseFile(input)
	if err != nil {
		return err
	}
	t.Preprocess(score)

	tokens, err := t.Encode(score)
	if err != nil {
		return err
	}

	seq := tokenizer.Sequence{
		TimeDivision: score.TicksPerQuarter,
		Tokens:       tokenizer.TokenStrings(tokens),
	}
	if err := seq.Save(output); err != nil {
		return err
	}

	fmt.Printf("Tokenized %s -> %s (%d tokens)\n", input, output, len(tokens))
	return nil
}

func runDetokenize(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	t, err := getTokenizer()
	if err != nil {
		return err
	}

	seq, err := tokenizer.LoadSequence(input)
	if err != nil {
		return err
	}

	score, err := t.DecodeStrings(seq.Tokens, seq.TimeDivision)
	if err != nil {
		return err
	}

	if err := midifile.WriteFile(score, output); err != nil {
		return err
	}

	fmt.Printf("Decoded %s -> %s (%d tracks)\n", input, output, len(score.Tracks))
	return nil
}

func runVocab(cmd *cobra.Command, args []string) error {
	t, err := getTokenizer()
	if err != nil {
		return err
	}
	vocab := t.Vocabulary()
	for _, tok := range vocab {
		fmt.Println(tok)
	}
	fmt.Fprintf(os.Stderr, "%d tokens\n", len(vocab))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	input := args[0]

	t, err := getTokenizer()
	if err != nil {
		return err
	}

	seq, err := tokenizer.LoadSequence(input)
	if err != nil {
		return err
	}

	count, ratio := t.CountTypeErrors(tokenizer.ParseTokens(seq.Tokens))
	fmt.Printf("%s: %d illegal transitions out of %d (%.2f%%)\n",
		input, count, len(seq.Tokens)-1, ratio*100)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
