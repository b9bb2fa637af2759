package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/folio/internal/adapter"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/preview"
	"github.com/mmcdole/folio/internal/search"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateHelp
)

// ChromeHeight is the footer height below the page
const ChromeHeight = 1

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Showcase
	Showcase *preview.Showcase
	Page     *Page
	Filter   *search.Filter
	Opener   *adapter.Opener
	events   <-chan domain.PreviewEvent
	logger   *slog.Logger

	// Data
	items   []*preview.Item
	visible []int            // indexes into items, page order
	matches map[string][]int // title highlight offsets by project ID

	// UI Components
	FilterInput textinput.Model
	Bar         progress.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Selected     int // index into visible
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// NewModel creates a new application model. The showcase must already be
// attached to page; events is the channel fed by a ChannelObserver.
func NewModel(
	showcase *preview.Showcase,
	page *Page,
	events <-chan domain.PreviewEvent,
	opener *adapter.Opener,
	logger *slog.Logger,
) Model {
	if logger == nil {
		logger = slog.Default()
	}

	items := showcase.Items()
	projects := make([]domain.Project, len(items))
	for i, it := range items {
		projects[i] = it.Project()
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filter projects"
	input.CharLimit = 64

	m := Model{
		State:       StateBrowsing,
		Showcase:    showcase,
		Page:        page,
		Filter:      search.NewFilter(search.NewProjectIndex(projects), logger),
		Opener:      opener,
		events:      events,
		logger:      logger,
		items:       items,
		FilterInput: input,
		Bar:         progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.applyFilter("")
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForPreviewEventCmd(m.events),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if m.State != StateBrowsing {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.Page.ScrollBy(-3)
		case tea.MouseButtonWheelDown:
			m.Page.ScrollBy(3)
		}
		return m, nil

	case PreviewEventMsg:
		var cmd tea.Cmd
		if msg.Event.Kind == domain.PreviewFailed {
			m.StatusMsg = "Preview failed: " + m.titleOf(msg.Event.ProjectID)
			m.StatusIsErr = true
			cmd = ClearStatusCmd(3 * time.Second)
		}
		return m, tea.Batch(cmd, WaitForPreviewEventCmd(m.events))

	case PreviewEventsClosedMsg:
		return m, nil

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)
	}

	return m, nil
}

// updateLayout propagates the terminal size to the page and widgets
func (m *Model) updateLayout() {
	m.Page.Resize(m.Height - ChromeHeight)
	m.Bar.Width = max(m.Width-16, 10)
	m.FilterInput.Width = max(m.Width-20, 10)
}

// applyFilter recomputes the visible cards for query and relayouts the page
func (m *Model) applyFilter(query string) {
	results := m.Filter.Match(query)

	m.matches = make(map[string][]int)
	if results == nil {
		m.visible = make([]int, len(m.items))
		for i := range m.items {
			m.visible[i] = i
		}
	} else {
		m.visible = make([]int, len(results))
		for i, r := range results {
			m.visible[i] = r.Index
			m.matches[m.items[r.Index].Project().ID] = r.MatchedIndexes
		}
	}

	ids := make([]string, len(m.visible))
	for i, idx := range m.visible {
		ids[i] = m.items[idx].Project().ID
	}
	m.Page.SetCards(ids)
	m.Selected = 0
}

// selectedItem returns the highlighted card's item, if any
func (m Model) selectedItem() *preview.Item {
	if m.Selected < 0 || m.Selected >= len(m.visible) {
		return nil
	}
	return m.items[m.visible[m.Selected]]
}

// selectCard moves the selection by delta and scrolls it into place
func (m *Model) selectCard(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.Selected = (m.Selected + delta + len(m.visible)) % len(m.visible)
	m.Page.ScrollToCard(m.Selected)
}

func (m Model) titleOf(projectID string) string {
	if it, ok := m.Showcase.Item(projectID); ok {
		return it.Project().GetTitle()
	}
	return projectID
}
