// ABOUTME: Bubbletea model for the sample pad TUI
// ABOUTME: Defines pad state, key handling and rendering
package ui

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/resonate-sampler/internal/version"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxPads is the number of pads reachable from the keyboard (keys 1-9)
const MaxPads = 9

// Pad describes one loaded sample
type Pad struct {
	Title      string
	Path       string
	Channels   int
	SampleRate int
	Duration   time.Duration
}

// Model represents the TUI state
type Model struct {
	pads   []Pad
	voices []int

	// Device
	backend    string
	sampleRate int
	channels   int

	// Playback
	volume      int
	muted       bool
	liveBuffers int

	showDebug bool
	control   *Control

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderPads()
	s += m.renderControls()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders product and device info
func (m Model) renderHeader() string {
	device := "No device"
	if m.backend != "" {
		device = fmt.Sprintf("%s %dHz %s", m.backend, m.sampleRate, channelName(m.channels))
	}

	return fmt.Sprintf(`┌─ %-51s┐
│ Device: %-45s │
├──────────────────────────────────────────────────────┤
`, version.Product+" ", truncate(device, 45))
}

// renderPads renders one line per loaded sample
func (m Model) renderPads() string {
	if len(m.pads) == 0 {
		return "│ No samples loaded                                    │\n"
	}

	s := ""
	for i, p := range m.pads {
		marker := " "
		if m.voices[i] > 0 {
			marker = "▶"
		}
		line := fmt.Sprintf("%d %s %-24s %5.2fs %s x%d",
			i+1, marker, truncate(p.Title, 24), p.Duration.Seconds(), channelName(p.Channels), m.voices[i])
		s += fmt.Sprintf("│ %-52s │\n", line)
	}
	return s
}

// renderControls renders volume and buffer status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Buffers: %d live, %d voices%-22s │\n",
		volumeBar, m.volume, muteIcon, "",
		m.liveBuffers, m.totalVoices(), "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ 1-9:Play  s:Stop  ↑/↓:Volume  m:Mute  d:Debug  q:Quit│
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	s := "│ DEBUG:                                               │\n"
	for i, p := range m.pads {
		s += fmt.Sprintf("│   %d: %-47s │\n", i+1, truncate(fmt.Sprintf("%s %dHz", p.Path, p.SampleRate), 47))
	}
	return s
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		trySend(m.control.quit(), QuitMsg{})
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume = min(m.volume+5, 100)
			trySend(m.control.volume(), VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
		}
	case "down":
		if m.volume > 0 {
			m.volume = max(m.volume-5, 0)
			trySend(m.control.volume(), VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
		}
	case "m":
		m.muted = !m.muted
		trySend(m.control.volume(), VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
	case "s":
		trySend(m.control.stop(), StopAllMsg{})
	case "d":
		m.showDebug = !m.showDebug
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			pad := int(key[0] - '1')
			if pad < len(m.pads) {
				trySend(m.control.triggers(), TriggerMsg{Pad: pad})
			}
		}
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Backend != "" {
		m.backend = msg.Backend
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.Pads != nil {
		m.pads = msg.Pads
		if len(m.pads) > MaxPads {
			m.pads = m.pads[:MaxPads]
		}
		m.voices = make([]int, len(m.pads))
	}
	if msg.Voices != nil {
		for i, n := range msg.Voices {
			if i < len(m.voices) {
				m.voices[i] = n
			}
		}
	}
	if msg.LiveBuffers != nil {
		m.liveBuffers = *msg.LiveBuffers
	}
}

func (m Model) totalVoices() int {
	n := 0
	for _, v := range m.voices {
		n += v
	}
	return n
}

// StatusMsg updates TUI state. Zero-valued fields are left unchanged.
type StatusMsg struct {
	Backend     string
	SampleRate  int
	Channels    int
	Pads        []Pad
	Voices      []int
	LiveBuffers *int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
