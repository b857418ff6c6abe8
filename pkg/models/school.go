package models

import "strings"

// SchoolPayload is the wire shape of a school. Older API versions send the
// tuition string as tuition_text instead of tuition.
type SchoolPayload struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	PublicPrivate *string `json:"public_private"`
	Tuition       *string `json:"tuition"`
	TuitionText   *string `json:"tuition_text"`
}

type SchoolView struct {
	ID      int
	Name    string
	City    string
	State   string
	Type    string
	Tuition string
}

func (p SchoolPayload) Normalize() SchoolView {
	v := SchoolView{
		ID:    p.ID,
		Name:  strings.TrimSpace(p.Name),
		City:  orPlaceholder(deref(p.City)),
		State: orPlaceholder(deref(p.State)),
		Type:  orPlaceholder(deref(p.PublicPrivate)),
	}

	tuition := strings.TrimSpace(deref(p.Tuition))
	if tuition == "" {
		tuition = strings.TrimSpace(deref(p.TuitionText))
	}
	v.Tuition = orPlaceholder(tuition)

	return v
}

// Location renders "City, State".
func (v SchoolView) Location() string {
	return v.City + ", " + v.State
}
