package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/snaketracks/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStatsFetched MsgKind = iota
)

type statsResult struct {
	stats *models.Stats
	err   error
}

// statsFetchedMsg is the constructor for [MsgStatsFetched]
func statsFetchedMsg(stats *models.Stats, err error) Msg {
	return Msg{kind: MsgStatsFetched, data: statsResult{stats, err}}
}
