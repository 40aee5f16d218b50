package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icco/movies/lib/lock"
	"github.com/icco/movies/lib/omdb"
	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

var (
	// ErrStorage wraps any failure reported by the database.
	ErrStorage = errors.New("storage failure")
	// ErrUnknownUser means the user id or name does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrDuplicate means the user already has a movie with that title.
	ErrDuplicate = errors.New("movie already in collection")
	// ErrBusy means another writer held the user's lock for too long.
	ErrBusy = errors.New("collection is busy")
)

const lockTimeout = 5 * time.Second

// Gateway resolves a free-text title into canonical metadata.
type Gateway interface {
	Lookup(ctx context.Context, title string) (*omdb.Metadata, error)
}

// Locker serializes writes to a single user's collection.
type Locker interface {
	TryLock(ctx context.Context, key string, timeout time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Store owns the lifecycle of movie rows. Every movie operation is scoped by user id.
type Store struct {
	db      *gorm.DB
	gateway Gateway
	locker  Locker
	logger  *slog.Logger
}

// New returns a Store. A nil locker runs mutations unguarded.
func New(db *gorm.DB, gateway Gateway, locker Locker, logger *slog.Logger) *Store {
	return &Store{
		db:      db,
		gateway: gateway,
		locker:  locker,
		logger:  logger,
	}
}

// Listing is a user's movies in listing order (insertion order).
type Listing []models.Movie

// ByTitle returns the listing keyed by title. Later rows win on a repeated
// title; Add keeps titles distinct per user so nothing collapses in practice.
func (l Listing) ByTitle() map[string]models.Movie {
	byTitle := make(map[string]models.Movie, len(l))
	for _, m := range l {
		byTitle[m.Title] = m
	}
	return byTitle
}

// Titles returns the titles in listing order.
func (l Listing) Titles() []string {
	titles := make([]string, len(l))
	for i, m := range l {
		titles[i] = m.Title
	}
	return titles
}

// Add looks title up through the gateway and stores the result for userID.
// Nothing is written when the lookup fails.
func (s *Store) Add(ctx context.Context, title string, userID uint) (*models.Movie, error) {
	title, err := validation.ValidateTitle(title)
	if err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	meta, err := s.gateway.Lookup(ctx, title)
	if err != nil {
		s.logger.InfoContext(ctx, "Movie lookup failed", slog.String("title", title), slog.Any("error", err))
		return nil, err
	}

	movie := &models.Movie{
		Title:     meta.Title,
		Year:      meta.Year,
		Rating:    meta.Rating,
		PosterURL: optional(meta.PosterURL),
		IMDbID:    optional(meta.IMDbID),
		UserID:    userID,
	}

	err = s.withUserLock(ctx, userID, func() error {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.Movie{}).
			Where("user_id = ? AND title = ?", userID, movie.Title).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("%w: failed to check for existing movie: %w", ErrStorage, err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: %q", ErrDuplicate, movie.Title)
		}

		if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
			return fmt.Errorf("%w: failed to add movie: %w", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Added movie",
		slog.String("title", movie.Title),
		slog.Uint64("user_id", uint64(userID)))
	return movie, nil
}

// Delete removes every movie titled title owned by userID and returns how many
// rows went away. Zero means the title was not in the collection.
func (s *Store) Delete(ctx context.Context, title string, userID uint) (int64, error) {
	var removed int64
	err := s.withUserLock(ctx, userID, func() error {
		result := s.db.WithContext(ctx).
			Where("title = ? AND user_id = ?", title, userID).
			Delete(&models.Movie{})
		if result.Error != nil {
			return fmt.Errorf("%w: failed to delete movie: %w", ErrStorage, result.Error)
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Deleted movie",
		slog.String("title", title),
		slog.Uint64("user_id", uint64(userID)),
		slog.Int64("rows", removed))
	return removed, nil
}

// Update sets the note on every movie titled title owned by userID. No other
// column changes. Zero means the title was not in the collection.
func (s *Store) Update(ctx context.Context, title, note string, userID uint) (int64, error) {
	var updated int64
	err := s.withUserLock(ctx, userID, func() error {
		result := s.db.WithContext(ctx).Model(&models.Movie{}).
			Where("title = ? AND user_id = ?", title, userID).
			Update("note", note)
		if result.Error != nil {
			return fmt.Errorf("%w: failed to update movie: %w", ErrStorage, result.Error)
		}
		updated = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Updated movie note",
		slog.String("title", title),
		slog.Uint64("user_id", uint64(userID)),
		slog.Int64("rows", updated))
	return updated, nil
}

// List returns every movie owned by userID in insertion order.
func (s *Store) List(ctx context.Context, userID uint) (Listing, error) {
	var movies []models.Movie
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list movies: %w", ErrStorage, err)
	}
	return Listing(movies), nil
}

func (s *Store) withUserLock(ctx context.Context, userID uint, fn func() error) error {
	if s.locker == nil {
		return fn()
	}

	key := lock.UserKey(userID)
	ok, err := s.locker.TryLock(ctx, key, lockTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	if !ok {
		return ErrBusy
	}
	defer func() {
		if err := s.locker.Unlock(ctx, key); err != nil {
			s.logger.ErrorContext(ctx, "Failed to release lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	return fn()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
