// Package compare keeps the professors a user has picked for side-by-side
// comparison.
package compare

import (
	"context"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/samber/lo"
)

const (
	// Unbounded disables eviction.
	Unbounded = 0

	// HomeCapacity is the size of the quick-compare tray on the landing flow.
	HomeCapacity = 2
)

// Entry is one compared professor plus the school it was picked from, if any.
type Entry struct {
	Professor models.ProfessorView
	School    *models.SchoolView
}

// Set is an ordered collection of entries with unique professor ids. When
// full, adding a new professor evicts the oldest entry. A Set is owned by a
// single session and is not safe for concurrent use.
type Set struct {
	maxSize int
	entries []Entry
}

// New returns an empty set. maxSize <= 0 means unbounded.
func New(maxSize int) *Set {
	if maxSize < 0 {
		maxSize = Unbounded
	}
	return &Set{maxSize: maxSize}
}

func (s *Set) MaxSize() int { return s.maxSize }

// Add appends p unless it is already present. The evicted entry is returned
// when the add pushed the oldest entry out.
func (s *Set) Add(p models.ProfessorView, school *models.SchoolView) (added bool, evicted *Entry) {
	if s.Contains(p.ID) {
		return false, nil
	}
	if s.maxSize != Unbounded && len(s.entries) >= s.maxSize {
		oldest := s.entries[0]
		s.entries = append(s.entries[:0:0], s.entries[1:]...)
		evicted = &oldest
	}
	s.entries = append(s.entries, Entry{Professor: p, School: school})
	return true, evicted
}

// Remove drops the entry for id. Removing an absent id is a no-op.
func (s *Set) Remove(id int) bool {
	before := len(s.entries)
	s.entries = lo.Reject(s.entries, func(e Entry, _ int) bool {
		return e.Professor.ID == id
	})
	return len(s.entries) != before
}

func (s *Set) Contains(id int) bool {
	return lo.ContainsBy(s.entries, func(e Entry) bool {
		return e.Professor.ID == id
	})
}

func (s *Set) Len() int      { return len(s.entries) }
func (s *Set) IsEmpty() bool { return len(s.entries) == 0 }

// Entries returns the entries oldest first. The slice is a copy.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IDs returns professor ids oldest first.
func (s *Set) IDs() []int {
	return lo.Map(s.entries, func(e Entry, _ int) int { return e.Professor.ID })
}

// DetailLoader fetches the full professor record.
type DetailLoader interface {
	Professor(ctx context.Context, id int) (models.ProfessorView, error)
}

// AddResolved adds p, first fetching the full record when p is only a search
// summary. If the fetch fails the set is left untouched and the error is
// returned as is.
func (s *Set) AddResolved(ctx context.Context, loader DetailLoader, p models.ProfessorView, school *models.SchoolView) (*Entry, error) {
	if s.Contains(p.ID) {
		return nil, nil
	}
	if !p.HasDetail {
		full, err := loader.Professor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p = full
	}
	_, evicted := s.Add(p, school)
	return evicted, nil
}
