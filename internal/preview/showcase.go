package preview

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/folio/internal/domain"
)

// Host is the page the showcase lives on: it emits scroll notifications,
// reports viewport geometry and locates project cards.
type Host interface {
	domain.ScrollSource
	domain.Viewport
	Locate(projectID string) (domain.Bounds, bool)
}

// ShowcaseOptions configures a Showcase
type ShowcaseOptions struct {
	QuietInterval time.Duration
	Store         domain.AssetStore
	Sink          domain.AnalyticsSink
	Observer      domain.PreviewObserver
	Logger        *slog.Logger
	Parent        context.Context
}

// Showcase wires a tracker and an item for every project on a page.
type Showcase struct {
	items    []*Item
	byID     map[string]*Item
	trackers []*Tracker
	logger   *slog.Logger
}

// NewShowcase builds the per-project glue. Trackers stay detached until Attach.
func NewShowcase(projects []domain.Project, host Host, sched Scheduler, fetcher domain.Fetcher, opts ShowcaseOptions) *Showcase {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Showcase{
		byID:   make(map[string]*Item, len(projects)),
		logger: opts.Logger,
	}

	for _, p := range projects {
		if _, dup := s.byID[p.ID]; dup {
			opts.Logger.Warn("skipping duplicate project", "project", p.ID)
			continue
		}

		item := NewItem(p, ItemDeps{
			Fetcher:  fetcher,
			Dispatch: sched,
			Store:    opts.Store,
			Sink:     opts.Sink,
			Observer: opts.Observer,
			Logger:   opts.Logger,
			Parent:   opts.Parent,
		})

		id := p.ID
		locate := func() (domain.Bounds, bool) { return host.Locate(id) }
		tracker := NewTracker(sched, host, host, locate, opts.QuietInterval, item.Update)

		s.items = append(s.items, item)
		s.byID[id] = item
		s.trackers = append(s.trackers, tracker)
	}
	return s
}

// Attach starts tracking every project
func (s *Showcase) Attach() {
	for _, t := range s.trackers {
		t.Attach()
	}
	s.logger.Debug("showcase attached", "projects", len(s.items))
}

// Detach stops tracking and cancels every running download
func (s *Showcase) Detach() {
	for _, t := range s.trackers {
		t.Detach()
	}
	for _, it := range s.items {
		it.Cancel()
	}
	s.logger.Debug("showcase detached")
}

// Items returns the items in page order
func (s *Showcase) Items() []*Item {
	return s.items
}

// Item returns the item for a project
func (s *Showcase) Item(projectID string) (*Item, bool) {
	it, ok := s.byID[projectID]
	return it, ok
}
