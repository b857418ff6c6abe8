package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// RatingPayload keeps stars raw: the API has been seen sending numbers,
// numeric strings and garbage in that field.
type RatingPayload struct {
	ID          int                 `json:"id"`
	ProfessorID int                 `json:"professor_id"`
	UserID      *int                `json:"user_id,omitempty"`
	Stars       jsoniter.RawMessage `json:"stars"`
	Comment     *string             `json:"comment"`
	CreatedAt   *time.Time          `json:"created_at"`
}

// Rating is one normalized rating. Valid is false when stars could not be
// read as an integer; such ratings are kept for display but never counted.
type Rating struct {
	ID          int
	ProfessorID int
	Stars       int
	Valid       bool
	Comment     string
	CreatedAt   time.Time
}

func (p RatingPayload) Normalize() Rating {
	r := Rating{
		ID:          p.ID,
		ProfessorID: p.ProfessorID,
		Comment:     strings.TrimSpace(deref(p.Comment)),
	}
	if p.CreatedAt != nil {
		r.CreatedAt = *p.CreatedAt
	}
	r.Stars, r.Valid = parseStars(p.Stars)
	return r
}

func parseStars(raw jsoniter.RawMessage) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// RatingSubmission is the body of POST /professors/{id}/ratings.
type RatingSubmission struct {
	Stars   int    `json:"stars" validate:"min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// RatingStats is the aggregate block some API versions attach to a professor.
type RatingStats struct {
	Average      *float64       `json:"average"`
	TotalCount   int            `json:"total_count"`
	Distribution map[string]int `json:"distribution"`
}
