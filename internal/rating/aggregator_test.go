package rating_test

import (
	"testing"

	"github.com/binhbb2204/RateMyProf-Group13/internal/rating"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stars(vals ...int) []models.Rating {
	out := make([]models.Rating, 0, len(vals))
	for i, v := range vals {
		out = append(out, models.Rating{ID: i + 1, Stars: v, Valid: true})
	}
	return out
}

func histSum(h map[int]int) int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

func TestAggregate_Empty(t *testing.T) {
	s := rating.Aggregate(nil)

	assert.Nil(t, s.Average)
	assert.Nil(t, s.WouldTakeAgainPct)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, s.Histogram)
	for star := 1; star <= 5; star++ {
		assert.Equal(t, 0.0, s.BarWidth(star))
	}
}

func TestAggregate_SkipsOutOfRange(t *testing.T) {
	s := rating.Aggregate(stars(5, 1, 4, 99))

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 1, 5: 1}, s.Histogram)
	require.NotNil(t, s.Average)
	assert.Equal(t, 3.3, *s.Average)
	require.NotNil(t, s.WouldTakeAgainPct)
	assert.Equal(t, 67, *s.WouldTakeAgainPct)
}

func TestAggregate_SkipsMalformed(t *testing.T) {
	in := append(stars(2, 0, -3), models.Rating{ID: 99, Valid: false})
	s := rating.Aggregate(in)

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 2.0, *s.Average)
	assert.Equal(t, 0, *s.WouldTakeAgainPct)
	assert.Equal(t, 3, rating.Ignored(in))
}

func TestAggregate_HistogramSumsToCount(t *testing.T) {
	inputs := [][]models.Rating{
		stars(),
		stars(1, 2, 3, 4, 5),
		stars(5, 5, 5, 6, 7, 0),
		stars(3, 3, -1, 4, 100, 2, 1),
		append(stars(4, 4), models.Rating{Stars: 4, Valid: false}),
	}
	for _, in := range inputs {
		s := rating.Aggregate(in)
		assert.Equal(t, s.Count, histSum(s.Histogram))
		assert.LessOrEqual(t, s.Count, len(in))
		assert.Len(t, s.Histogram, 5)
	}
}

func TestSummary_BarWidth(t *testing.T) {
	s := rating.Aggregate(stars(5, 5, 5, 1))

	assert.Equal(t, 75.0, s.BarWidth(5))
	assert.Equal(t, 25.0, s.BarWidth(1))
	assert.Equal(t, 0.0, s.BarWidth(3))
}

func TestFromServer(t *testing.T) {
	avg, pct := 4.26, 80
	s := rating.FromServer(&avg, 10, map[int]int{5: 6, 4: 2, 1: 2}, &pct)

	assert.Equal(t, 4.3, *s.Average)
	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 80, *s.WouldTakeAgainPct)
	assert.Equal(t, 0, s.Histogram[3])
	assert.Equal(t, 60.0, s.BarWidth(5))

	none := rating.FromServer(&avg, 0, nil, &pct)
	assert.Nil(t, none.Average)
	assert.Nil(t, none.WouldTakeAgainPct)
	assert.Len(t, none.Histogram, 5)
}

func TestFromServer_DistributionLargerThanCount(t *testing.T) {
	avg := 4.5
	s := rating.FromServer(&avg, 2, map[int]int{5: 3, 4: 2}, nil)

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 60.0, s.BarWidth(5))
	assert.Equal(t, 40.0, s.BarWidth(4))
	for star := rating.MinStars; star <= rating.MaxStars; star++ {
		assert.LessOrEqual(t, s.BarWidth(star), 100.0)
		assert.GreaterOrEqual(t, s.BarWidth(star), 0.0)
	}
}

func TestSummary_ScorePrefersVolume(t *testing.T) {
	single := rating.Aggregate(stars(5))
	many := rating.Aggregate(stars(4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4))
	low := rating.Aggregate(stars(1, 1, 1, 2, 1))

	assert.Greater(t, many.Score(), single.Score())
	assert.Greater(t, single.Score(), low.Score())
}

func TestFormat(t *testing.T) {
	avg, pct := 3.0, 50
	assert.Equal(t, "N/A", rating.FormatAverage(nil))
	assert.Equal(t, "3.0", rating.FormatAverage(&avg))
	assert.Equal(t, "N/A", rating.FormatPct(nil))
	assert.Equal(t, "50%", rating.FormatPct(&pct))
}
