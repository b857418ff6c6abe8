package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"github.com/samber/lo"
)

const DefaultSearchLimit = 20

func professorPath(id int) string        { return "/professors/" + strconv.Itoa(id) }
func professorRatingsPath(id int) string { return professorPath(id) + "/ratings" }

// SearchProfessors runs GET /professors/search. An empty query returns no
// results without calling the API.
func (c *Client) SearchProfessors(ctx context.Context, q string, limit int) ([]models.ProfessorView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := url.Values{}
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))

	var page models.Page[models.ProfessorPayload]
	if err := c.getJSON(ctx, "professor_search", "/professors/search", query, &page); err != nil {
		return nil, fetchError("search professors", err)
	}
	return lo.Map(page.Items, func(p models.ProfessorPayload, _ int) models.ProfessorView {
		return p.Normalize()
	}), nil
}

// Professor runs GET /professors/{id}.
func (c *Client) Professor(ctx context.Context, id int) (models.ProfessorView, error) {
	var p models.ProfessorPayload
	if err := c.getJSON(ctx, "professor_detail", professorPath(id), nil, &p); err != nil {
		return models.ProfessorView{}, fetchError("load professor "+strconv.Itoa(id), err)
	}
	v := p.Normalize()
	v.HasDetail = true
	return v, nil
}

// Ratings runs GET /professors/{id}/ratings. Ratings with unreadable stars
// are returned flagged invalid rather than failing the call.
func (c *Client) Ratings(ctx context.Context, id int) ([]models.Rating, error) {
	var page models.Page[models.RatingPayload]
	fresh, err := c.getJSONFresh(ctx, "professor_ratings", professorRatingsPath(id), nil, &page)
	if err != nil {
		return nil, fetchError("load ratings for professor "+strconv.Itoa(id), err)
	}

	out := make([]models.Rating, 0, len(page.Items))
	for _, p := range page.Items {
		r := p.Normalize()
		if r.ProfessorID == 0 {
			r.ProfessorID = id
		}
		// counted once per body loaded from the API, not per cached read
		if !r.Valid && fresh {
			c.metrics.IgnoredRatings.Inc()
			c.log.Debug("malformed_rating_ignored", "professor_id", id, "rating_id", r.ID, "stars", string(p.Stars))
		}
		out = append(out, r)
	}
	return out, nil
}

// SubmitRating runs POST /professors/{id}/ratings with the credentials found
// on ctx. On success the cached detail and ratings of that professor are
// dropped, so the next read goes to the API.
func (c *Client) SubmitRating(ctx context.Context, id int, sub models.RatingSubmission) error {
	sub.Comment = strings.TrimSpace(sub.Comment)
	if err := c.validate.Struct(sub); err != nil {
		return &SubmissionError{ProfessorID: id, Detail: validationDetail(err), Err: ErrInvalidSubmission}
	}
	if _, ok := CredentialsFrom(ctx); !ok {
		return &SubmissionError{ProfessorID: id, Err: ErrNotAuthenticated}
	}

	err := c.sendJSON(ctx, "submit_rating", http.MethodPost, professorRatingsPath(id), sub, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return &SubmissionError{ProfessorID: id, Status: se.status, Detail: se.detail, Err: classify(se.status)}
		}
		return &SubmissionError{ProfessorID: id, Err: err}
	}

	c.Invalidate(professorPath(id), professorRatingsPath(id))
	c.log.Info("rating_submitted", "professor_id", id, "stars", sub.Stars)
	return nil
}
