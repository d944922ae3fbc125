package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type recordingMsg struct{ On bool }
type transcribingMsg struct{ On bool }
type levelMsg struct{ Level float64 }
type resultMsg struct {
	Text     string
	NoSpeech bool
	Audio    time.Duration
	Elapsed  time.Duration
}
type errorTextMsg struct{ Text string }
type statusLineMsg struct{ Text string }
type dialogMsg struct{ Visible bool }
type tickMsg time.Time

const levelBars = 30

type tuiModel struct {
	onToggle  func()
	onDismiss func()

	frame         int
	width, height int

	recording    bool
	transcribing bool
	startedAt    time.Time
	levels       [levelBars]float64
	peak         float64

	lastText    string
	lastNote    string
	errText     string
	statusLine  string
	dialogShown bool
	count       int
}

var (
	styleRec    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleWork   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleText   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleNote   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpHi = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	styleBarHi  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleBarLo  = lipgloss.NewStyle().Foreground(lipgloss.Color("52"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func NewTUIProgram(onToggle, onDismiss func()) *tea.Program {
	return tea.NewProgram(tuiModel{onToggle: onToggle, onDismiss: onDismiss}, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "enter":
			if m.onToggle != nil {
				m.onToggle()
			}
		case "esc":
			if m.onDismiss != nil {
				m.onDismiss()
			}
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case recordingMsg:
		m.recording = msg.On
		if msg.On {
			m.startedAt = time.Now()
			m.levels = [levelBars]float64{}
			m.peak = 0
			m.errText = ""
		}

	case transcribingMsg:
		m.transcribing = msg.On

	case levelMsg:
		if m.recording {
			copy(m.levels[:], m.levels[1:])
			m.levels[levelBars-1] = msg.Level
			if msg.Level > m.peak {
				m.peak = msg.Level
			}
		}

	case resultMsg:
		m.count++
		if msg.NoSpeech {
			m.lastText = ""
			m.lastNote = "no speech detected"
		} else {
			m.lastText = msg.Text
			m.lastNote = fmt.Sprintf("%.1fs audio | %dms | copied", msg.Audio.Seconds(), msg.Elapsed.Milliseconds())
		}

	case errorTextMsg:
		m.errText = msg.Text

	case statusLineMsg:
		m.statusLine = msg.Text

	case dialogMsg:
		m.dialogShown = msg.Visible
	}
	return m, nil
}

func levelGlyph(l float64) string {
	blocks := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	idx := int(l * 3 * float64(len(blocks)))
	if idx >= len(blocks) {
		idx = len(blocks) - 1
	}
	return blocks[idx]
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.recording:
		b.WriteString("  " + styleRec.Render(fmt.Sprintf("● REC %.1fs", time.Since(m.startedAt).Seconds())))
		if time.Since(m.startedAt) > time.Second && m.peak < 0.02 {
			b.WriteString(styleErr.Render("  ⚠ no voice detected"))
		}
	case m.transcribing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString("  " + styleWork.Render(spin+" transcribing"))
	default:
		b.WriteString("  " + styleIdle.Render("○ idle"))
	}
	if m.dialogShown {
		b.WriteString(styleIdle.Render("  [applet]"))
	}
	b.WriteString("\n\n  ")

	for _, l := range m.levels {
		if l > 0.02 {
			b.WriteString(styleBarHi.Render(levelGlyph(l)))
		} else {
			b.WriteString(styleBarLo.Render(levelGlyph(l)))
		}
	}
	b.WriteString("\n\n")

	if m.errText != "" {
		b.WriteString("  " + styleErr.Render("✗ "+m.errText) + "\n")
	}
	if m.lastText != "" {
		text := m.lastText
		if max := m.width - 4; max > 8 && len(text) > max {
			text = text[:max-1] + "…"
		}
		b.WriteString("  " + styleText.Render(text) + "\n")
	}
	if m.lastNote != "" {
		b.WriteString("  " + styleNote.Render(m.lastNote) + "\n")
	}
	b.WriteString("\n")

	if m.statusLine != "" {
		b.WriteString("  " + styleIdle.Render(m.statusLine) + "\n")
	}
	b.WriteString("  " + styleHelpHi.Render("Ctrl+Shift+Space") + styleHelp.Render(" or ") +
		styleHelpHi.Render("space") + styleHelp.Render(" to dictate  ·  ") +
		styleHelpHi.Render("esc") + styleHelp.Render(" hides the indicator  ·  ") +
		styleHelp.Render("murmur "+version) + "\n")

	return b.String()
}
