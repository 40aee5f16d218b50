package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

// Health is the JSON body served by Check.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DB        struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
		Users   int64  `json:"users"`
		Movies  int64  `json:"movies"`
	} `json:"db"`
}

type probe struct {
	failure string
	run     func(ctx context.Context, db *gorm.DB, h *Health) error
}

var probes = []probe{
	{"Database ping failed", func(ctx context.Context, db *gorm.DB, _ *Health) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}},
	{"Failed to count users", func(ctx context.Context, db *gorm.DB, h *Health) error {
		return db.WithContext(ctx).Model(&models.User{}).Count(&h.DB.Users).Error
	}},
	{"Failed to count movies", func(ctx context.Context, db *gorm.DB, h *Health) error {
		return db.WithContext(ctx).Model(&models.Movie{}).Count(&h.DB.Movies).Error
	}},
}

// Check returns a handler that pings the store and reports how many users
// and movies it holds. Any failing probe answers 503.
func Check(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := Health{
			Status:    "ok",
			Timestamp: time.Now(),
		}

		for _, p := range probes {
			if err := p.run(ctx, db, &health); err != nil {
				slog.WarnContext(ctx, "Health probe failed", slog.String("probe", p.failure), slog.Any("error", err))
				health.Status = "degraded"
				health.DB.Status = "error"
				health.DB.Message = p.failure
				writeHealth(w, health, http.StatusServiceUnavailable)
				return
			}
		}

		health.DB.Status = "ok"
		writeHealth(w, health, http.StatusOK)
	}
}

func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
