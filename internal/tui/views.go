package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/preview"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// View renders the current viewport of the page plus the footer
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	viewport := m.Page.ViewportHeight()
	offset := m.Page.ScrollOffset()
	lines := m.renderPage()

	var b strings.Builder
	for i := 0; i < viewport; i++ {
		if n := offset + i; n < len(lines) {
			b.WriteString(lines[n])
		}
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderPage renders every line of the page in page coordinates, so line
// n matches the geometry Page reports.
func (m Model) renderPage() []string {
	lines := m.renderBanner()

	cardHeight := m.Page.CardHeight()
	gap := m.Page.Gap()
	for i, idx := range m.visible {
		if i > 0 {
			for g := 0; g < gap; g++ {
				lines = append(lines, "")
			}
		}
		lines = append(lines, m.renderCard(m.items[idx].Snapshot(), i == m.Selected, cardHeight)...)
	}
	return lines
}

func (m Model) renderBanner() []string {
	count := fmt.Sprintf("%d projects", len(m.visible))
	if len(m.visible) != len(m.items) {
		count = fmt.Sprintf("%d of %d projects", len(m.visible), len(m.items))
	}
	lines := []string{
		styles.BannerStyle.Render("folio"),
		styles.DimStyle.Render(count + " · previews load when a card is fully in view"),
	}
	for len(lines) < BannerHeight {
		lines = append(lines, "")
	}
	return lines
}

// renderCard renders one project card as exactly height lines
func (m Model) renderCard(snap preview.ItemSnapshot, selected bool, height int) []string {
	inner := max(height-2, 1)
	width := max(m.Width-4, 10) // border + padding

	title := styles.HighlightMatches(
		styles.Truncate(snap.Project.GetTitle(), width-4),
		m.matches[snap.Project.ID],
		styles.TitleStyle,
	)
	content := []string{
		renderStatusIcon(snap, m.SpinnerFrame) + " " + title,
		m.renderPreviewLine(snap, width),
	}
	if snap.Project.Summary != "" {
		content = append(content, styles.SubtitleStyle.Render(styles.Truncate(snap.Project.Summary, width)))
	}
	if len(snap.Project.Tags) > 0 {
		content = append(content, styles.TagStyle.Render(styles.Truncate("#"+strings.Join(snap.Project.Tags, " #"), width)))
	}
	if len(content) > inner {
		content = content[:inner]
	}

	style := styles.CardStyle
	switch {
	case selected:
		style = styles.SelectedCardStyle
	case snap.Visibility.InView:
		style = styles.InViewCardStyle
	}
	box := style.Width(max(m.Width-2, 12)).Height(inner).Render(strings.Join(content, "\n"))

	out := strings.Split(box, "\n")
	for len(out) < height {
		out = append(out, "")
	}
	return out[:height]
}

// renderPreviewLine describes the preview state. The progress bar is
// hidden while the page is scrolling.
func (m Model) renderPreviewLine(snap preview.ItemSnapshot, width int) string {
	if !snap.Project.HasPreview() {
		return styles.DimStyle.Render("static screenshot only")
	}

	switch snap.State {
	case domain.ItemDownloading:
		pct := fmt.Sprintf("%3d%%", snap.Percent)
		if snap.Visibility.Scrolling {
			return styles.DimStyle.Render("downloading preview " + pct)
		}
		bar := m.Bar
		bar.Width = max(width-6, 4)
		return bar.ViewAs(float64(snap.Percent)/100) + " " + styles.AccentStyle.Render(pct)
	case domain.ItemReady:
		detail := "preview ready"
		if snap.Asset != nil {
			detail = fmt.Sprintf("preview ready · %s · %s", snap.Asset.ContentType, formatSize(len(snap.Asset.DataURI)))
		}
		return styles.SuccessStyle.Render(styles.Truncate(detail, width))
	case domain.ItemCancelled:
		return styles.AccentStyle.Render(fmt.Sprintf("paused at %d%% · scroll back to resume", snap.Percent))
	case domain.ItemFailed:
		msg := "preview unavailable"
		if snap.Err != nil {
			msg += ": " + snap.Err.Error()
		}
		return styles.ErrorStyle.Render(styles.Truncate(msg, width))
	default:
		return styles.DimStyle.Render("preview loads when fully in view")
	}
}

func renderStatusIcon(snap preview.ItemSnapshot, frame int) string {
	switch snap.State {
	case domain.ItemDownloading:
		return RenderSpinner(frame)
	case domain.ItemReady:
		return styles.ReadyCheck
	case domain.ItemCancelled:
		return styles.CancelledDot
	case domain.ItemFailed:
		return styles.FailedCross
	default:
		return styles.PendingDot
	}
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.State == StateFiltering:
		left = m.FilterInput.View()
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	default:
		left = m.renderCounts()
	}

	// Right side: "? help" hint
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// renderCounts summarizes item states, e.g. "2 ready · 1 downloading"
func (m Model) renderCounts() string {
	counts := make(map[domain.ItemState]int)
	for _, it := range m.items {
		counts[it.Snapshot().State]++
	}

	var parts []string
	for _, s := range []domain.ItemState{domain.ItemReady, domain.ItemDownloading, domain.ItemCancelled, domain.ItemFailed} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], strings.ToLower(s.String())))
		}
	}
	if len(parts) == 0 {
		return styles.DimStyle.Render("scroll to load previews")
	}

	text := styles.DimStyle.Render(strings.Join(parts, " · "))
	if counts[domain.ItemDownloading] > 0 {
		text = RenderSpinner(m.SpinnerFrame) + " " + text
	}
	return text
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
SCROLLING                       CARDS
  j/k        Line down/up          Tab/n   Next card
  Ctrl+d/u   Half page             S-Tab/N Previous card
  PgDn/PgUp  Full page             o/Enter Open preview
  g/G        Top/bottom

FILTER                          OTHER
  /          Filter projects       q       Quit
  Enter      Keep filter           ?       This help
  Esc        Clear filter

Previews download once a card is fully in view
and scrolling has paused.

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// formatSize renders a byte count for humans
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}
