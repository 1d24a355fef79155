package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/snaketracks/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SummaryView
	SectionView
)

// StatsSource fetches statistics for a Last.fm user. Implemented by services.StatsAggregator.
type StatsSource interface {
	Stats(ctx context.Context, username string) (*models.Stats, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	source   StatsSource
	username string
	stats    *models.Stats
	section  Section
	width    int
	height   int
	menu     list.Model
	entries  list.Model
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model that browses username's statistics.
func NewModel(ctx context.Context, source StatsSource, username string) *Model {
	return &Model{
		ctx:      ctx,
		view:     LoadingView,
		source:   source,
		username: username,
		menu:     list.New(nil, list.NewDefaultDelegate(), 0, 0),
		entries:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching statistics.
func (m *Model) Init() tea.Cmd {
	return m.fetchStats()
}

// Err returns the last fetch error, if any.
func (m *Model) Err() error {
	return m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(m.listSize())
		m.entries.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case SummaryView:
			return m.handleSummaryKeys(msg)
		case SectionView:
			return m.handleSectionKeys(msg)
		}
		return m, nil

	case Msg:
		if msg.kind == MsgStatsFetched {
			return m.handleStats(msg.data.(statsResult))
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
	}

	switch m.view {
	case LoadingView:
		return styles.help.Render(fmt.Sprintf("Loading statistics for %s...", m.username))
	case SummaryView:
		return m.renderSummary()
	case SectionView:
		return m.renderSection()
	default:
		return ""
	}
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-10, 0)
}

func (m *Model) handleStats(res statsResult) (tea.Model, tea.Cmd) {
	if res.err != nil {
		m.err = res.err
		m.view = SummaryView
		return m, nil
	}

	m.err = nil
	m.stats = res.stats
	m.menu = list.New(sectionItems(res.stats), list.NewDefaultDelegate(), 0, 0)
	m.menu.Title = "Sections"
	m.menu.SetShowHelp(false)
	m.menu.SetSize(m.listSize())
	m.view = SummaryView
	return m, nil
}

func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.reload):
		m.view = LoadingView
		return m, m.fetchStats()
	case key.Matches(msg, m.keys.enter):
		if m.stats == nil {
			return m, nil
		}
		if item, ok := m.menu.SelectedItem().(sectionItem); ok {
			m.openSection(item.section)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleSectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) && !m.entries.SettingFilter() {
		m.view = SummaryView
		return m, nil
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) openSection(section Section) {
	m.section = section
	m.entries = list.New(itemsFor(m.stats, section), list.NewDefaultDelegate(), 0, 0)
	m.entries.Title = section.String()
	m.entries.SetShowHelp(false)
	m.entries.SetSize(m.listSize())
	m.view = SectionView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SummaryView:
		m.menu, cmd = m.menu.Update(msg)
	case SectionView:
		m.entries, cmd = m.entries.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.source.Stats(m.ctx, m.username)
		return statsFetchedMsg(stats, err)
	}
}

func (m *Model) header() string {
	user := m.stats.User
	title := styles.title.Render(fmt.Sprintf("%s on Last.fm", user.Name))
	return fmt.Sprintf("%s\n%s scrobbles • %s", title, styles.ok.Render(user.Playcount), styles.help.Render(user.URL))
}

func (m *Model) renderSummary() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.reload, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.header(), m.menu.View(), helpView)
}

func (m *Model) renderSection() string {
	body := m.entries.View()
	if len(m.entries.Items()) == 0 {
		body = styles.warn.Render(fmt.Sprintf("No %s available.", m.section))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.header(), body, helpView)
}
