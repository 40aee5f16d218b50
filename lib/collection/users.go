package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

// Users returns every profile ordered by name.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %w", ErrStorage, err)
	}
	return users, nil
}

// UserByName finds a profile by its exact, case-sensitive name.
func (s *Store) UserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownUser, name)
		}
		return nil, fmt.Errorf("%w: failed to get user: %w", ErrStorage, err)
	}
	return &user, nil
}

// EnsureUser selects the profile called name, creating it on first use. The
// boolean reports whether a new profile was created.
func (s *Store) EnsureUser(ctx context.Context, name string) (*models.User, bool, error) {
	name, err := validation.ValidateUsername(name)
	if err != nil {
		return nil, false, err
	}

	user, err := s.UserByName(ctx, name)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUnknownUser) {
		return nil, false, err
	}

	user = &models.User{Name: name}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("%w: failed to create user: %w", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "Created user", slog.String("name", name), slog.Uint64("user_id", uint64(user.ID)))
	return user, true, nil
}

func (s *Store) requireUser(ctx context.Context, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: failed to get user: %w", ErrStorage, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownUser, userID)
	}
	return nil
}
