package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// tickInterval drives watcher polling and flash expiry.
const tickInterval = 100 * time.Millisecond

// tickMsg fires on every poll interval.
type tickMsg time.Time

// explainDoneMsg carries the assistant's answer for the explain modal.
type explainDoneMsg struct {
	text string
	err  error
}

// editorDoneMsg reports the external editor exiting.
type editorDoneMsg struct {
	err error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
