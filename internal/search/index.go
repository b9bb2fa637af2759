// Package search filters showcase projects by title and tag.
package search

import (
	"strings"

	"github.com/mmcdole/folio/internal/domain"
)

// ProjectIndex implements sahilm/fuzzy.Source over project titles
type ProjectIndex struct {
	projects    []domain.Project
	lowerTitles []string // Pre-computed lowercase titles
	lowerTags   [][]string
}

// NewProjectIndex builds an index over projects, preserving their order
func NewProjectIndex(projects []domain.Project) *ProjectIndex {
	idx := &ProjectIndex{
		projects:    projects,
		lowerTitles: make([]string, len(projects)),
		lowerTags:   make([][]string, len(projects)),
	}
	for i, p := range projects {
		idx.lowerTitles[i] = strings.ToLower(p.GetTitle())
		tags := make([]string, len(p.Tags))
		for j, t := range p.Tags {
			tags[j] = strings.ToLower(t)
		}
		idx.lowerTags[i] = tags
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *ProjectIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of projects (implements fuzzy.Source)
func (idx *ProjectIndex) Len() int { return len(idx.projects) }

// Project returns the project at index i
func (idx *ProjectIndex) Project(i int) domain.Project { return idx.projects[i] }
