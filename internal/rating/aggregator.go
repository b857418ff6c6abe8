// Package rating turns a professor's individual ratings into the numbers the
// detail and compare views display.
package rating

import (
	"math"
	"strconv"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
)

const (
	MinStars = 1
	MaxStars = 5

	// ratings at or above this count towards "would take again"
	takeAgainStars = 4

	// z for a one-sided 95% bound, see Score
	scoreZ = 1.65
)

// Summary holds the aggregates of one professor's ratings.
type Summary struct {
	// Average is rounded to one decimal; nil when Count is zero.
	Average *float64
	Count   int
	// Histogram always carries the keys 1 through 5.
	Histogram map[int]int
	// WouldTakeAgainPct is 0..100; nil when Count is zero.
	WouldTakeAgainPct *int
}

// Aggregate computes a Summary. Ratings whose stars are unreadable or outside
// 1..5 are skipped by every statistic.
func Aggregate(ratings []models.Rating) Summary {
	s := Summary{Histogram: emptyHistogram()}

	sum, takeAgain := 0, 0
	for _, r := range ratings {
		if !ValidStars(r) {
			continue
		}
		s.Histogram[r.Stars]++
		s.Count++
		sum += r.Stars
		if r.Stars >= takeAgainStars {
			takeAgain++
		}
	}

	if s.Count == 0 {
		return s
	}

	avg := round1(float64(sum) / float64(s.Count))
	pct := int(math.Round(float64(takeAgain) * 100 / float64(s.Count)))
	s.Average = &avg
	s.WouldTakeAgainPct = &pct
	return s
}

// ValidStars reports whether r takes part in aggregation.
func ValidStars(r models.Rating) bool {
	return r.Valid && r.Stars >= MinStars && r.Stars <= MaxStars
}

// Ignored counts the ratings Aggregate would skip.
func Ignored(ratings []models.Rating) int {
	n := 0
	for _, r := range ratings {
		if !ValidStars(r) {
			n++
		}
	}
	return n
}

// FromServer builds a Summary out of aggregates the API computed itself.
// A missing distribution yields an all-zero histogram.
func FromServer(avg *float64, count int, dist map[int]int, pct *int) Summary {
	s := Summary{Histogram: emptyHistogram(), Count: count}
	for star := MinStars; star <= MaxStars; star++ {
		s.Histogram[star] = dist[star]
	}
	if count <= 0 {
		s.Count = 0
		return s
	}
	if avg != nil {
		a := round1(*avg)
		s.Average = &a
	}
	if pct != nil {
		p := *pct
		s.WouldTakeAgainPct = &p
	}
	return s
}

// BarWidth is the percentage width of the distribution bar for star. Server
// aggregates may claim fewer ratings than their distribution holds, so the
// denominator is the larger of Count and the histogram total, keeping every
// width within 0..100.
func (s Summary) BarWidth(star int) float64 {
	total := 0
	for st := MinStars; st <= MaxStars; st++ {
		total += max(s.Histogram[st], 0)
	}
	n := max(s.Count, total, 1)
	return float64(max(s.Histogram[star], 0)) / float64(n) * 100
}

// Score ranks professors by the lower bound of the expected star value,
// so that one 5-star rating does not beat fifty 4-star ones.
func (s Summary) Score() float64 {
	n := 0
	for star := MinStars; star <= MaxStars; star++ {
		n += s.Histogram[star]
	}
	k := float64(MaxStars - MinStars + 1)

	var first, second float64
	for star := MinStars; star <= MaxStars; star++ {
		w := float64(s.Histogram[star]+1) / (float64(n) + k)
		first += float64(star) * w
		second += float64(star*star) * w
	}
	variance := (second - first*first) / (float64(n) + k + 1)
	return first - scoreZ*math.Sqrt(variance)
}

// FormatAverage renders an average for display.
func FormatAverage(avg *float64) string {
	if avg == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*avg, 'f', 1, 64)
}

// FormatPct renders a would-take-again percentage for display.
func FormatPct(pct *int) string {
	if pct == nil {
		return "N/A"
	}
	return strconv.Itoa(*pct) + "%"
}

func emptyHistogram() map[int]int {
	h := make(map[int]int, MaxStars)
	for star := MinStars; star <= MaxStars; star++ {
		h[star] = 0
	}
	return h
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
