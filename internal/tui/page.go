package tui

import (
	"sync"

	"github.com/mmcdole/folio/internal/domain"
)

// BannerHeight is the number of lines above the first card
const BannerHeight = 3

// Page lays project cards out vertically and acts as the showcase host:
// it reports viewport geometry, locates cards and notifies subscribers
// whenever the scroll position or the layout changes.
//
// Page is safe for concurrent use; trackers read it from the event loop
// while Bubble Tea mutates it from Update.
type Page struct {
	mu         sync.RWMutex
	order      []string       // visible card IDs, top to bottom
	index      map[string]int // card ID -> position in order
	cardHeight int
	gap        int
	height     int // viewport height
	offset     int

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

// NewPage creates an empty page
func NewPage(cardHeight, gap int) *Page {
	if cardHeight < 1 {
		cardHeight = 1
	}
	if gap < 0 {
		gap = 0
	}
	return &Page{
		index:      make(map[string]int),
		cardHeight: cardHeight,
		gap:        gap,
		subs:       make(map[int]func()),
	}
}

// Subscribe registers fn for scroll and resize notifications
func (p *Page) Subscribe(fn func()) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

func (p *Page) notify() {
	p.subMu.Lock()
	subs := make([]func(), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// ViewportHeight returns the visible height of the page
func (p *Page) ViewportHeight() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.height
}

// ScrollOffset returns the current vertical scroll offset
func (p *Page) ScrollOffset() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.offset
}

// Locate returns a card's bounds relative to the viewport top. Cards
// hidden by a filter are not mounted.
func (p *Page) Locate(projectID string) (domain.Bounds, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.index[projectID]
	if !ok {
		return domain.Bounds{}, false
	}
	return domain.Bounds{Top: p.cardTop(i) - p.offset, Height: p.cardHeight}, true
}

// SetCards replaces the visible cards, keeping the offset in range
func (p *Page) SetCards(ids []string) {
	p.mu.Lock()
	p.order = append([]string(nil), ids...)
	p.index = make(map[string]int, len(ids))
	for i, id := range p.order {
		p.index[id] = i
	}
	p.offset = p.clamp(p.offset)
	p.mu.Unlock()
	p.notify()
}

// Resize sets the viewport height
func (p *Page) Resize(height int) {
	p.mu.Lock()
	p.height = max(height, 0)
	p.offset = p.clamp(p.offset)
	p.mu.Unlock()
	p.notify()
}

// ScrollBy moves the viewport by delta lines. It reports whether the
// offset changed; subscribers are only notified on a change.
func (p *Page) ScrollBy(delta int) bool {
	p.mu.RLock()
	target := p.offset + delta
	p.mu.RUnlock()
	return p.ScrollTo(target)
}

// ScrollTo moves the viewport to offset, clamped to the page
func (p *Page) ScrollTo(offset int) bool {
	p.mu.Lock()
	next := p.clamp(offset)
	changed := next != p.offset
	p.offset = next
	p.mu.Unlock()

	if changed {
		p.notify()
	}
	return changed
}

// ScrollToCard scrolls so card i sits at the viewport top, or as close
// as the page allows.
func (p *Page) ScrollToCard(i int) bool {
	p.mu.RLock()
	if i < 0 || i >= len(p.order) {
		p.mu.RUnlock()
		return false
	}
	top := p.cardTop(i)
	p.mu.RUnlock()
	return p.ScrollTo(top)
}

// CardHeight returns the height of one card in lines
func (p *Page) CardHeight() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cardHeight
}

// Gap returns the number of blank lines between cards
func (p *Page) Gap() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gap
}

// Cards returns the visible card IDs in page order
func (p *Page) Cards() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// CardTop returns the page coordinate of card i
func (p *Page) CardTop(i int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cardTop(i)
}

// ContentHeight returns the total page height
func (p *Page) ContentHeight() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.contentHeight()
}

// MaxOffset returns the largest valid scroll offset
func (p *Page) MaxOffset() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxOffset()
}

// Card layout: banner, then cards separated by gap lines.
func (p *Page) cardTop(i int) int {
	return BannerHeight + i*(p.cardHeight+p.gap)
}

func (p *Page) contentHeight() int {
	n := len(p.order)
	if n == 0 {
		return BannerHeight
	}
	return BannerHeight + n*p.cardHeight + (n-1)*p.gap
}

// The page always scrolls at least past the banner, otherwise a short
// page would sit at offset 0 forever and never count as viewed.
func (p *Page) maxOffset() int {
	return max(p.contentHeight()-p.height, BannerHeight)
}

func (p *Page) clamp(offset int) int {
	return min(max(offset, 0), p.maxOffset())
}
