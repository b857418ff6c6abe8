// Package professor assembles the professor card: detail, ratings and the
// aggregates shown next to them.
package professor

import (
	"context"
	"math"

	"github.com/binhbb2204/RateMyProf-Group13/internal/rating"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Source tells where a card's summary came from.
type Source string

const (
	// SourceRatings means the summary was computed from the ratings list.
	SourceRatings Source = "ratings"
	// SourceServer means the list was empty and the API's own aggregates were used.
	SourceServer Source = "server"
)

// maxParallelCards bounds the fan-out of Cards.
const maxParallelCards = 4

// Client is the subset of the API client the service needs.
type Client interface {
	Professor(ctx context.Context, id int) (models.ProfessorView, error)
	Ratings(ctx context.Context, id int) ([]models.Rating, error)
	SubmitRating(ctx context.Context, id int, sub models.RatingSubmission) error
}

type Card struct {
	Professor models.ProfessorView
	Ratings   []models.Rating
	Summary   rating.Summary
	Source    Source
}

type Service struct {
	client Client
	log    *logger.Logger
}

func NewService(client Client) *Service {
	return &Service{
		client: client,
		log:    logger.WithContext("component", "professor_service"),
	}
}

// Card loads the detail and the ratings of one professor concurrently.
func (s *Service) Card(ctx context.Context, id int) (Card, error) {
	var (
		p       models.ProfessorView
		ratings []models.Rating
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.client.Professor(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = s.client.Ratings(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return Card{}, err
	}

	summary, source := s.resolve(p, ratings)
	return Card{Professor: p, Ratings: ratings, Summary: summary, Source: source}, nil
}

// Cards loads several cards in parallel, keeping the order of ids. The
// first failure cancels the rest.
func (s *Service) Cards(ctx context.Context, ids []int) ([]Card, error) {
	cards := make([]Card, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCards)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.Card(gctx, id)
			if err != nil {
				return err
			}
			cards[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}

// Submit posts a rating and, once the API has confirmed it, returns the
// refreshed card. Nothing is refetched when the submission fails.
func (s *Service) Submit(ctx context.Context, id int, sub models.RatingSubmission) (Card, error) {
	if err := s.client.SubmitRating(ctx, id, sub); err != nil {
		s.log.Warn("rating_submit_failed", "professor_id", id, logger.Err(err))
		return Card{}, err
	}
	return s.Card(ctx, id)
}

// resolve picks the summary for a card. The ratings list wins whenever it
// has entries; the API's aggregates are only used when the list is empty
// although the API claims ratings exist.
func (s *Service) resolve(p models.ProfessorView, ratings []models.Rating) (rating.Summary, Source) {
	computed := rating.Aggregate(ratings)
	if ignored := rating.Ignored(ratings); ignored > 0 {
		s.log.Debug("ratings_ignored", "professor_id", p.ID, "count", ignored)
	}

	if len(ratings) == 0 && p.RatingsCount > 0 {
		s.log.Warn("aggregate_mismatch",
			"professor_id", p.ID,
			"server_count", p.RatingsCount,
			"list_count", 0,
			"using", SourceServer,
		)
		return rating.FromServer(p.AvgStars, p.RatingsCount, p.Distribution, p.WouldTakeAgainPct), SourceServer
	}

	if p.HasDetail && disagrees(p, computed) {
		s.log.Warn("aggregate_mismatch",
			"professor_id", p.ID,
			"server_count", p.RatingsCount,
			"list_count", computed.Count,
			"server_avg", rating.FormatAverage(p.AvgStars),
			"list_avg", rating.FormatAverage(computed.Average),
			"using", SourceRatings,
		)
	}
	return computed, SourceRatings
}

// disagrees compares the server's aggregates with the computed ones at the
// one decimal precision they are displayed with.
func disagrees(p models.ProfessorView, computed rating.Summary) bool {
	if p.RatingsCount != computed.Count {
		return true
	}
	switch {
	case p.AvgStars == nil && computed.Average == nil:
		return false
	case p.AvgStars == nil || computed.Average == nil:
		return p.AvgStars != nil || p.RatingsCount > 0
	default:
		return math.Abs(math.Round(*p.AvgStars*10)/10-*computed.Average) > 1e-9
	}
}
