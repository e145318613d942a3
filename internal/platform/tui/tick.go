// Package tui provides the Bubble Tea front ends of the environment:
// interactive play, history replay and the episode browser, plus the
// Wish SSH server that serves play sessions remotely.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultReplayRate is the replay speed in keystrokes per second.
const DefaultReplayRate = 10

// TickMsg advances a replay by one keystroke.
type TickMsg time.Time

// tickCmd schedules the next TickMsg at rate ticks per second.
func tickCmd(rate int) tea.Cmd {
	if rate <= 0 {
		rate = DefaultReplayRate
	}
	interval := time.Second / time.Duration(rate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
