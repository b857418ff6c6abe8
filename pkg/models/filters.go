package models

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// SchoolFilters are forwarded to GET /schools/search as-is.
type SchoolFilters struct {
	State      string
	Type       string // Public or Private; empty for any
	MaxTuition float64
	Search     string
	Sort       string
	Page       int
	PageSize   int
}

func (f SchoolFilters) Values() url.Values {
	v := url.Values{}
	setString(v, "state", f.State)
	setString(v, "public_private", f.Type)
	setString(v, "search", f.Search)
	setString(v, "sort", f.Sort)
	if f.MaxTuition > 0 {
		v.Set("max_tuition", strconv.FormatFloat(f.MaxTuition, 'f', -1, 64))
	}
	setInt(v, "page", f.Page)
	setInt(v, "page_size", f.PageSize)
	return v
}

// ProfessorFilters are forwarded to GET /schools/{id}/professors as-is.
type ProfessorFilters struct {
	Level      string
	Department string
	Search     string
	Sort       string
	Page       int
	PageSize   int
}

func (f ProfessorFilters) Values() url.Values {
	v := url.Values{}
	setString(v, "level", f.Level)
	setString(v, "department", f.Department)
	setString(v, "search", f.Search)
	setString(v, "sort", f.Sort)
	setInt(v, "page", f.Page)
	setInt(v, "page_size", f.PageSize)
	return v
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParseMaxTuition accepts user input such as "$50,000" and returns 0 when
// nothing usable is left.
func ParseMaxTuition(s string) float64 {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

func setString(v url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}
