package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Card borders
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	SelectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Amber).
				Padding(0, 1)

	// InViewCardStyle marks cards the tracker currently considers visible
	InViewCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Padding(0, 1)
)

// Text styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	// MatchStyle highlights filter matches inside titles
	MatchStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true).
			Underline(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(Blue)
)

// Raw status characters (unstyled)
const (
	PendingChar   = "○"
	CancelledChar = "◌"
	ReadyChar     = "✓"
	FailedChar    = "✗"
)

// Pre-rendered status indicators
var (
	PendingDot   = DimStyle.Render(PendingChar)
	CancelledDot = AccentStyle.Render(CancelledChar)
	ReadyCheck   = SuccessStyle.Render(ReadyChar)
	FailedCross  = ErrorStyle.Render(FailedChar)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Amber)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(1, 2).
			Background(SlateDark)
)

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// HighlightMatches renders s with the runes at the matched byte offsets in
// MatchStyle and the rest in base.
func HighlightMatches(s string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var run []rune
	var result string
	inMatch := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if inMatch {
			result += MatchStyle.Render(string(run))
		} else {
			result += base.Render(string(run))
		}
		run = run[:0]
	}
	for i, r := range s {
		if set[i] != inMatch {
			flush()
			inMatch = set[i]
		}
		run = append(run, r)
	}
	flush()
	return result
}
