package search

import (
	"log/slog"
	"sort"
	"strings"

	tagmatch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// Result is a filtered project with match metadata
type Result struct {
	Index          int   // Position in the source project list
	MatchedIndexes []int // Title character positions that matched (for highlighting)
	Score          int   // Higher is better
	ByTag          bool  // Matched through a tag rather than the title
}

// tagPenalty keeps tag-only matches below title matches of similar quality
const tagPenalty = 1000

// Filter matches queries against a ProjectIndex
type Filter struct {
	index  *ProjectIndex
	logger *slog.Logger
}

// NewFilter creates a filter over index
func NewFilter(index *ProjectIndex, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{index: index, logger: logger}
}

// Match returns the projects matching query, best first. An empty query
// returns nil, meaning "no filter".
//
// Titles are matched with sahilm/fuzzy so the UI can highlight the
// matched characters; a project whose title does not match may still be
// included through a tag (e.g. "go" finds every project tagged "golang").
func (f *Filter) Match(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []Result
	seen := make(map[int]bool)

	for _, m := range fuzzy.FindFrom(query, f.index) {
		results = append(results, Result{
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
		seen[m.Index] = true
	}

	for i, tags := range f.index.lowerTags {
		if seen[i] {
			continue
		}
		best := -1
		for _, ranked := range tagmatch.RankFindFold(query, tags) {
			if best < 0 || ranked.Distance < best {
				best = ranked.Distance
			}
		}
		if best >= 0 {
			results = append(results, Result{Index: i, Score: -tagPenalty - best, ByTag: true})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	f.logger.Debug("filter", "query", query, "results", len(results))
	return results
}

// Indexes returns just the source positions of Match(query). A nil result
// means every project is visible.
func (f *Filter) Indexes(query string) []int {
	results := f.Match(query)
	if results == nil {
		return nil
	}
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Index
	}
	return out
}
