package models

import (
	"math"
	"strconv"
	"strings"
)

// Placeholder is shown wherever a display field is missing.
const Placeholder = "—"

// ProfessorPayload is the wire shape of a professor as returned by the search,
// school listing and detail endpoints. The endpoints disagree on which fields
// they send, so everything is optional here and resolved once in Normalize.
type ProfessorPayload struct {
	ID                int            `json:"id"`
	Name              *string        `json:"name"`
	FirstName         *string        `json:"first_name"`
	LastName          *string        `json:"last_name"`
	Department        *string        `json:"department"`
	Level             *string        `json:"level"`
	Email             *string        `json:"email"`
	Bio               Field[string]  `json:"bio"`
	PhotoURL          *string        `json:"photo_url"`
	SchoolID          *int           `json:"school_id"`
	AvgStars          *float64       `json:"avg_stars"`
	Rating            *float64       `json:"rating"`
	RatingsCount      *int           `json:"ratings_count"`
	Distribution      map[string]int `json:"distribution"`
	WouldTakeAgainPct *float64       `json:"would_take_again_pct"`
}

// ProfessorView is the canonical professor record consumed by presentation code.
type ProfessorView struct {
	ID         int
	Name       string
	FirstName  string
	LastName   string
	Department string
	Level      string
	Email      string
	Bio        string
	PhotoURL   string
	SchoolID   int

	// Server-supplied aggregates. AvgStars is nil when the server has none.
	AvgStars          *float64
	RatingsCount      int
	Distribution      map[int]int
	WouldTakeAgainPct *int

	// HasDetail is set when the payload came from the detail endpoint.
	HasDetail bool
}

func (p ProfessorPayload) Normalize() ProfessorView {
	v := ProfessorView{
		ID:         p.ID,
		FirstName:  strings.TrimSpace(deref(p.FirstName)),
		LastName:   strings.TrimSpace(deref(p.LastName)),
		Department: orPlaceholder(deref(p.Department)),
		Level:      orPlaceholder(deref(p.Level)),
		Email:      deref(p.Email),
		PhotoURL:   deref(p.PhotoURL),
		HasDetail:  p.Bio.Set,
	}
	if p.Bio.Value != nil {
		v.Bio = *p.Bio.Value
	}
	if p.SchoolID != nil {
		v.SchoolID = *p.SchoolID
	}

	v.Name = strings.TrimSpace(deref(p.Name))
	if v.Name == "" {
		v.Name = strings.TrimSpace(v.FirstName + " " + v.LastName)
	}
	if v.Name == "" {
		v.Name = "Professor #" + strconv.Itoa(p.ID)
	}

	switch {
	case p.AvgStars != nil:
		v.AvgStars = p.AvgStars
	case p.Rating != nil:
		v.AvgStars = p.Rating
	}
	if p.RatingsCount != nil {
		v.RatingsCount = *p.RatingsCount
	}
	if p.WouldTakeAgainPct != nil {
		pct := int(math.Round(*p.WouldTakeAgainPct))
		v.WouldTakeAgainPct = &pct
	}
	if len(p.Distribution) > 0 {
		v.Distribution = make(map[int]int, 5)
		for k, n := range p.Distribution {
			star, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil || star < 1 || star > 5 {
				continue
			}
			v.Distribution[star] += n
		}
	}

	return v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}
