// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the channels carrying pad actions
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TriggerMsg asks for a new voice of a pad
type TriggerMsg struct {
	Pad int
}

// StopAllMsg asks to stop every voice
type StopAllMsg struct{}

// VolumeChangeMsg carries the master volume
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg signals the user quit
type QuitMsg struct{}

// Control holds channels for pad actions requested from the TUI
type Control struct {
	Triggers chan TriggerMsg
	Stop     chan StopAllMsg
	Volume   chan VolumeChangeMsg
	Quit     chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Triggers: make(chan TriggerMsg, 10),
		Stop:     make(chan StopAllMsg, 1),
		Volume:   make(chan VolumeChangeMsg, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

func (c *Control) triggers() chan TriggerMsg {
	if c == nil {
		return nil
	}
	return c.Triggers
}

func (c *Control) stop() chan StopAllMsg {
	if c == nil {
		return nil
	}
	return c.Stop
}

func (c *Control) volume() chan VolumeChangeMsg {
	if c == nil {
		return nil
	}
	return c.Volume
}

func (c *Control) quit() chan QuitMsg {
	if c == nil {
		return nil
	}
	return c.Quit
}

// trySend delivers msg without blocking the UI; a full or nil channel drops it
func trySend[T any](ch chan T, msg T) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		volume:  100,
		control: ctrl,
	}
}

// Run creates the TUI program
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
