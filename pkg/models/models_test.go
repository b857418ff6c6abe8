package models_test

import (
	"testing"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestProfessorPayload_NormalizeComposesNameAndDefaults(t *testing.T) {
	var p models.ProfessorPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"first_name":"Ada","last_name":"Lovelace","rating":4.5}`), &p))

	v := p.Normalize()
	assert.Equal(t, "Ada Lovelace", v.Name)
	assert.Equal(t, models.Placeholder, v.Department)
	assert.Equal(t, models.Placeholder, v.Level)
	require.NotNil(t, v.AvgStars)
	assert.Equal(t, 4.5, *v.AvgStars)
	assert.False(t, v.HasDetail)
}

func TestProfessorPayload_NormalizePrefersAvgStarsAndDetectsDetail(t *testing.T) {
	body := `{"id":9,"name":"Grace Hopper","department":"CS","avg_stars":3.2,"rating":1.0,
		"ratings_count":5,"bio":"Navy","distribution":{"1":1,"5":4,"9":2},"would_take_again_pct":66.6}`
	var p models.ProfessorPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	v := p.Normalize()
	assert.Equal(t, "Grace Hopper", v.Name)
	assert.Equal(t, "CS", v.Department)
	assert.Equal(t, 3.2, *v.AvgStars)
	assert.Equal(t, 5, v.RatingsCount)
	assert.Equal(t, map[int]int{1: 1, 5: 4}, v.Distribution)
	require.NotNil(t, v.WouldTakeAgainPct)
	assert.Equal(t, 67, *v.WouldTakeAgainPct)
	assert.True(t, v.HasDetail)
	assert.Equal(t, "Navy", v.Bio)
}

func TestProfessorPayload_NormalizeFallsBackToID(t *testing.T) {
	v := models.ProfessorPayload{ID: 12}.Normalize()
	assert.Equal(t, "Professor #12", v.Name)
	assert.Nil(t, v.AvgStars)
}

func TestSchoolPayload_NormalizeTuitionVariants(t *testing.T) {
	var a, b, c models.SchoolPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"A","tuition":"$10"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"name":"B","tuition_text":"$20 (in-state)"}`), &b))
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"name":"C","city":"Austin","state":"TX"}`), &c))

	assert.Equal(t, "$10", a.Normalize().Tuition)
	assert.Equal(t, "$20 (in-state)", b.Normalize().Tuition)
	assert.Equal(t, models.Placeholder, c.Normalize().Tuition)
	assert.Equal(t, "Austin, TX", c.Normalize().Location())
	assert.Equal(t, models.Placeholder, c.Normalize().Type)
}

func TestRatingPayload_NormalizeStars(t *testing.T) {
	cases := []struct {
		raw   string
		stars int
		valid bool
	}{
		{`4`, 4, true},
		{`"5"`, 5, true},
		{`99`, 99, true},
		{`4.0`, 4, true},
		{`4.5`, 0, false},
		{`"great"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var p models.RatingPayload
			require.NoError(t, json.Unmarshal([]byte(`{"id":1,"professor_id":2,"stars":`+tc.raw+`}`), &p))
			r := p.Normalize()
			assert.Equal(t, tc.valid, r.Valid)
			if tc.valid {
				assert.Equal(t, tc.stars, r.Stars)
			}
		})
	}
}

func TestPage_DecodesEnvelopeAndBareArray(t *testing.T) {
	var env, bare models.Page[models.ProfessorPayload]
	require.NoError(t, json.Unmarshal([]byte(`{"total":7,"page":2,"page_size":2,"items":[{"id":1},{"id":2}]}`), &env))
	require.NoError(t, json.Unmarshal([]byte(` [{"id":1},{"id":2}]`), &bare))

	assert.Equal(t, 7, env.Total)
	assert.Equal(t, 2, env.Page)
	assert.Len(t, env.Items, 2)
	assert.Equal(t, 2, bare.Total)
	assert.Equal(t, env.Items, bare.Items)

	ids := models.MapPage(env, func(p models.ProfessorPayload) int { return p.ID })
	assert.Equal(t, []int{1, 2}, ids.Items)
	assert.Equal(t, 7, ids.Total)
}

func TestDedupeProfessors(t *testing.T) {
	list := []models.ProfessorView{
		{ID: 1, FirstName: "A", LastName: "B"},
		{ID: 1, FirstName: "A", LastName: "B"},
		{ID: 2, FirstName: "A", LastName: "B"},
	}
	for i := 3; i < 20; i++ {
		list = append(list, models.ProfessorView{ID: i})
	}

	out := models.DedupeProfessors(list, models.SchoolListLimit)
	require.Len(t, out, models.SchoolListLimit)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, 2, out[1].ID)
	assert.Equal(t, 3, out[2].ID)

	assert.Len(t, models.DedupeProfessors(list, 0), len(list)-1)
}

func TestFilters_Values(t *testing.T) {
	sf := models.SchoolFilters{State: " TX ", Type: "Public", MaxTuition: 50000, Page: 1, PageSize: 50}
	assert.Equal(t, "max_tuition=50000&page=1&page_size=50&public_private=Public&state=TX", sf.Values().Encode())

	pf := models.ProfessorFilters{Level: "UG", Department: "Math"}
	assert.Equal(t, "department=Math&level=UG", pf.Values().Encode())
	assert.Empty(t, models.ProfessorFilters{}.Values().Encode())
}

func TestParseMaxTuition(t *testing.T) {
	assert.Equal(t, 50000.0, models.ParseMaxTuition("$50,000"))
	assert.Equal(t, 0.0, models.ParseMaxTuition("abc"))
	assert.Equal(t, 0.0, models.ParseMaxTuition("0"))
	assert.Equal(t, 0.0, models.ParseMaxTuition(""))
	assert.Equal(t, 1234.5, models.ParseMaxTuition("1234.5 USD"))
}
