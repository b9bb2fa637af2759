package domain

import (
	"strings"
	"time"
)

// Project is a showcased item: a static screenshot plus an optional
// animated preview that is downloaded lazily.
type Project struct {
	ID         string   `mapstructure:"id" json:"id"`
	Title      string   `mapstructure:"title" json:"title"`
	Summary    string   `mapstructure:"summary" json:"summary"`
	Tags       []string `mapstructure:"tags" json:"tags"`
	Screenshot string   `mapstructure:"screenshot" json:"screenshot"`   // Static image, always shown
	PreviewURL string   `mapstructure:"preview_url" json:"preview_url"` // Animated preview, fetched on demand
}

// GetID returns the project identifier
func (p Project) GetID() string { return p.ID }

// GetTitle returns the display title, falling back to the ID
func (p Project) GetTitle() string {
	if p.Title == "" {
		return p.ID
	}
	return p.Title
}

// HasPreview reports whether the project has an animated preview to fetch
func (p Project) HasPreview() bool {
	return strings.TrimSpace(p.PreviewURL) != ""
}

// PreviewAsset is a downloaded preview encoded as a data URI.
// Once stored for a project it is never replaced.
type PreviewAsset struct {
	ProjectID   string    `json:"project_id"`
	SourceURL   string    `json:"source_url"`
	ContentType string    `json:"content_type"`
	DataURI     string    `json:"data_uri"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Bounds is the vertical extent of a tracked element, relative to the
// top edge of the viewport.
type Bounds struct {
	Top    int
	Height int
}

// Bottom returns the first row below the element
func (b Bounds) Bottom() int { return b.Top + b.Height }

// VisibilityState is recomputed on every scroll tick.
type VisibilityState struct {
	InView    bool // Element fully inside the viewport
	Scrolling bool // A scroll tick arrived within the quiet interval
}

// Settled reports whether the state was computed after scrolling stopped
func (v VisibilityState) Settled() bool { return !v.Scrolling }
