package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/eventloop"
	"github.com/mmcdole/folio/internal/preview"
)

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string, domain.ProgressFunc) (domain.Payload, error) {
	return domain.Payload{}, errors.New("offline")
}

var testProjects = []domain.Project{
	{ID: "rt", Title: "Ray Tracer", Tags: []string{"graphics"}, PreviewURL: "https://cdn.example.com/rt.gif"},
	{ID: "kv", Title: "Key Value Store", Tags: []string{"storage"}},
	{ID: "synth", Title: "Modular Synth", Tags: []string{"audio"}, PreviewURL: "https://cdn.example.com/synth.gif"},
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	loop := eventloop.New()
	t.Cleanup(loop.Close)

	page := NewPage(5, 1)
	events := make(chan domain.PreviewEvent, 64)
	sc := preview.NewShowcase(testProjects, page, loop, failingFetcher{}, preview.ShowcaseOptions{
		Observer: NewChannelObserver(events),
	})
	sc.Attach()
	t.Cleanup(sc.Detach)

	m := NewModel(sc, page, events, nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	return updated.(Model)
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRendersAllCards(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	for _, p := range testProjects {
		if !strings.Contains(view, p.Title) {
			t.Errorf("Expected view to contain %q", p.Title)
		}
	}
	if !strings.Contains(view, "static screenshot only") {
		t.Error("Expected project without preview to say so")
	}
	if got := m.Page.ViewportHeight(); got != 40-ChromeHeight {
		t.Errorf("Expected viewport %d, got %d", 40-ChromeHeight, got)
	}
}

func TestModelFilter(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes("/"))
	if m.State != StateFiltering {
		t.Fatalf("Expected filtering state, got %d", m.State)
	}
	m = press(m, runes("s"), runes("y"), runes("n"), runes("t"), runes("h"))

	if cards := m.Page.Cards(); len(cards) != 1 || cards[0] != "synth" {
		t.Fatalf("Expected only synth to be mounted, got %v", cards)
	}
	if _, ok := m.Page.Locate("rt"); ok {
		t.Error("Expected filtered card to be unmounted")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.State != StateBrowsing || m.FilterInput.Value() != "synth" {
		t.Errorf("Expected filter to be kept, got state %d value %q", m.State, m.FilterInput.Value())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if n := len(m.Page.Cards()); n != len(testProjects) {
		t.Errorf("Expected all cards after clearing, got %d", n)
	}
}

func TestModelScrollKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes("j"), runes("j"))
	if got := m.Page.ScrollOffset(); got != 2 {
		t.Errorf("Expected offset 2, got %d", got)
	}
	m = press(m, runes("g"))
	if got := m.Page.ScrollOffset(); got != 0 {
		t.Errorf("Expected offset 0 after g, got %d", got)
	}
	m = press(m, runes("G"))
	if got := m.Page.ScrollOffset(); got != m.Page.MaxOffset() {
		t.Errorf("Expected bottom offset, got %d", got)
	}
}

func TestModelNextCardScrolls(t *testing.T) {
	m := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected != 1 {
		t.Fatalf("Expected second card selected, got %d", m.Selected)
	}
	if got := m.Page.ScrollOffset(); got != min(m.Page.CardTop(1), m.Page.MaxOffset()) {
		t.Errorf("Expected page to scroll to card, got offset %d", got)
	}
}

func TestModelHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m = press(m, runes("?"))
	if m.State != StateHelp || !strings.Contains(m.View(), "Filter projects") {
		t.Fatal("Expected help screen")
	}
	m = press(m, runes("x"))
	if m.State != StateBrowsing {
		t.Error("Expected any key to close help")
	}
}
