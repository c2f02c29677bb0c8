// Package tui provides a terminal user interface for miditok
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miniDevOn/MidiTok/pkg/chords"
	"github.com/miniDevOn/MidiTok/pkg/midifile"
	"github.com/miniDevOn/MidiTok/pkg/tokenizer"
)

var (
	// Piano-roll inspired colors
	rollBlue   = lipgloss.Color("#00BFFF")
	rollYellow = lipgloss.Color("#FFD700")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(rollBlue).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(rollBlue).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(rollYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(rollBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(rollBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      string
}

var menuItems = []MenuItem{
	{Title: "MIDI → TOKENS", Description: "Tokenize a MIDI file into a token sequence", Action: "tokenize"},
	{Title: "TOKENS → MIDI", Description: "Reconstruct a MIDI file from a token sequence", Action: "detokenize"},
	{Title: "Exit", Description: "Exit the application", Action: ""},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	tokenCount   int
	action       string
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	tokenCount int
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".json"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(rollBlue)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.tokenCount = msg.tokenCount
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.action = menuItems[m.menuIndex].Action
		m.state = StateFilePicker

		// Set file picker filter based on input format
		switch m.action {
		case "tokenize":
			m.filePicker.AllowedTypes = []string{".mid", ".midi"}
		case "detokenize":
			m.filePicker.AllowedTypes = []string{".json"}
		}

		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.tokenCount = 0
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func newTokenizer() *tokenizer.Tokenizer {
	cfg := tokenizer.DefaultConfig()
	cfg.UseTempo = true
	cfg.UseTimeSignature = true
	t := tokenizer.New(cfg)
	t.SetChordDetector(chords.NewDetector())
	return t
}

func (m Model) performConversion() tea.Cmd {
	return func() tea.Msg {
		t := newTokenizer()
		base := strings.TrimSuffix(m.selectedFile, filepath.Ext(m.selectedFile))

		switch m.action {
		case "tokenize":
			score, err := midifile.ParseFile(m.selectedFile)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			t.Preprocess(score)
			tokens, err := t.Encode(score)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			seq := tokenizer.Sequence{
				TimeDivision: score.TicksPerQuarter,
				Tokens:       tokenizer.TokenStrings(tokens),
			}
			outputFile := base + ".json"
			if err := seq.Save(outputFile); err != nil {
				return conversionDoneMsg{err: err}
			}
			return conversionDoneMsg{outputFile: outputFile, tokenCount: len(tokens)}

		case "detokenize":
			seq, err := tokenizer.LoadSequence(m.selectedFile)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			score, err := t.DecodeStrings(seq.Tokens, seq.TimeDivision)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			outputFile := base + ".mid"
			if err := midifile.WriteFile(score, outputFile); err != nil {
				return conversionDoneMsg{err: err}
			}
			return conversionDoneMsg{outputFile: outputFile, tokenCount: len(seq.Tokens)}
		}

		return conversionDoneMsg{err: fmt.Errorf("unknown action %q", m.action)}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT CONVERSION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(rollYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.action)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s\n", filepath.Base(m.outputFile)))
		s.WriteString(fmt.Sprintf("Tokens: %d", m.tokenCount))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __ ___ ____ ___ _____ ___  _  __
  |  \/  |_ _|  _ \_ _|_   _/ _ \| |/ /
  | |\/| || || | | | |  | || | | | ' /
  | |  | || || |_| | |  | || |_| | . \
  |_|  |_|___|____/___| |_| \___/|_|\_\
`
	return lipgloss.NewStyle().Foreground(rollBlue).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
