package models

import (
	"strconv"

	"github.com/samber/lo"
)

// SchoolListLimit caps how many professors a school listing shows.
const SchoolListLimit = 10

// DedupeProfessors drops repeated professors (same first name, last name,
// email and id) and keeps at most limit entries. limit <= 0 keeps all.
func DedupeProfessors(list []ProfessorView, limit int) []ProfessorView {
	unique := lo.UniqBy(list, func(p ProfessorView) string {
		return p.FirstName + "|" + p.LastName + "|" + p.Email + "|" + strconv.Itoa(p.ID)
	})
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}
