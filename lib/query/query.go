package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/icco/movies/lib/collection"
	"github.com/icco/movies/lib/types"
	"github.com/icco/movies/models"
)

var (
	// ErrNoData is wrapped by every "nothing to show" outcome.
	ErrNoData = errors.New("no data")
	// ErrNoMovies means the collection is empty.
	ErrNoMovies = fmt.Errorf("%w: no movies in collection", ErrNoData)
	// ErrNoRatings means the collection has movies but none with a usable rating.
	ErrNoRatings = fmt.Errorf("%w: no numeric ratings found", ErrNoData)
	// ErrNoMatches means a search found nothing.
	ErrNoMatches = fmt.Errorf("%w: no movies match", ErrNoData)
)

// Lister is the read side of the collection store.
type Lister interface {
	List(ctx context.Context, userID uint) (collection.Listing, error)
}

// Engine derives read-only views over a user's current listing. It never
// writes and re-reads the listing on every call.
type Engine struct {
	lister Lister
	intN   func(n int) int
}

func New(lister Lister) *Engine {
	return &Engine{
		lister: lister,
		intN:   rand.Intn,
	}
}

// Rating parses a stored rating. ok is false when it is absent or not numeric.
func Rating(m models.Movie) (float64, bool) {
	r, err := strconv.ParseFloat(strings.TrimSpace(m.Rating), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// qualifyingRating reports ratings that take part in statistics: numeric and above zero.
func qualifyingRating(m models.Movie) (float64, bool) {
	r, ok := Rating(m)
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

func (e *Engine) listing(ctx context.Context, userID uint) (collection.Listing, error) {
	movies, err := e.lister.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrNoMovies
	}
	return movies, nil
}

// Statistics computes average, median, and the best and worst tie sets over the
// qualifying ratings of userID's movies.
func (e *Engine) Statistics(ctx context.Context, userID uint) (*types.Stats, error) {
	movies, err := e.listing(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ratings []float64
	for _, m := range movies {
		if r, ok := qualifyingRating(m); ok {
			ratings = append(ratings, r)
		}
	}
	if len(ratings) == 0 {
		return nil, ErrNoRatings
	}

	var sum float64
	for _, r := range ratings {
		sum += r
	}

	sort.Float64s(ratings)
	n := len(ratings)
	mid := n / 2
	median := ratings[mid]
	if n%2 == 0 {
		median = (ratings[mid-1] + ratings[mid]) / 2
	}

	stats := &types.Stats{
		Count:   n,
		Average: sum / float64(n),
		Median:  median,
		Best:    types.Extreme{Rating: ratings[n-1]},
		Worst:   types.Extreme{Rating: ratings[0]},
	}
	for _, m := range movies {
		r, ok := qualifyingRating(m)
		if !ok {
			continue
		}
		if r == stats.Best.Rating {
			stats.Best.Titles = append(stats.Best.Titles, m.Title)
		}
		if r == stats.Worst.Rating {
			stats.Worst.Titles = append(stats.Worst.Titles, m.Title)
		}
	}

	return stats, nil
}

// RandomPick returns one movie chosen uniformly from the whole listing.
func (e *Engine) RandomPick(ctx context.Context, userID uint) (*models.Movie, error) {
	movies, err := e.listing(ctx, userID)
	if err != nil {
		return nil, err
	}
	pick := movies[e.intN(len(movies))]
	return &pick, nil
}

// Search returns the movies whose title contains q, ignoring case, in listing order.
func (e *Engine) Search(ctx context.Context, userID uint, q string) ([]models.Movie, error) {
	movies, err := e.listing(ctx, userID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	var matches []models.Movie
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatches, q)
	}
	return matches, nil
}

// SortedByRating returns the listing ordered by rating, highest first. Absent
// or non-numeric ratings order as zero; ties keep listing order.
func (e *Engine) SortedByRating(ctx context.Context, userID uint) ([]models.Movie, error) {
	movies, err := e.listing(ctx, userID)
	if err != nil {
		return nil, err
	}

	sorted := make([]models.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, _ := Rating(sorted[i])
		rj, _ := Rating(sorted[j])
		return ri > rj
	})
	return sorted, nil
}
