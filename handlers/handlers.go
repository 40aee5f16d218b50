package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/icco/movies/handlers/templates"
	"github.com/icco/movies/lib/collection"
	"github.com/icco/movies/lib/health"
	"github.com/icco/movies/lib/website"
	"github.com/icco/movies/models"
	"gorm.io/gorm"
)

// Collection is the read side of the collection store the preview server needs.
type Collection interface {
	Users(ctx context.Context) ([]models.User, error)
	UserByName(ctx context.Context, name string) (*models.User, error)
	List(ctx context.Context, userID uint) (collection.Listing, error)
}

// NewRouter serves every user's page live, straight from the store.
func NewRouter(db *gorm.DB, store Collection) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", HandleUsers(store))
	r.Get("/users/{name}", HandleUserPage(store))
	r.Get("/healthz", health.Check(db))

	return r
}

type errorData struct {
	Message string
}

func renderError(w http.ResponseWriter, message string, status int) {
	tmpl, err := templates.ParseTemplates("base.html", "error.html")
	if err != nil {
		slog.Error("Failed to parse error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", errorData{Message: message}); err != nil {
		slog.Error("Failed to execute error template", slog.Any("error", err))
	}
}

// HandleUsers lists every user with a link to their page.
func HandleUsers(store Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		users, err := store.Users(req.Context())
		if err != nil {
			slog.Error("Failed to list users", slog.Any("error", err))
			renderError(w, "We couldn't load the list of collections.", http.StatusInternalServerError)
			return
		}

		tmpl, err := templates.ParseTemplates("base.html", "users.html")
		if err != nil {
			slog.Error("Failed to parse template", slog.Any("error", err))
			renderError(w, "Something went wrong while loading the page.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, "base", struct{ Users []models.User }{Users: users}); err != nil {
			slog.Error("Failed to execute template", slog.Any("error", err))
		}
	}
}

// HandleUserPage renders the collection of the user named in the path.
func HandleUserPage(store Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name, err := userParam(req)
		if err != nil || name == "" {
			renderError(w, "Please provide a valid user name.", http.StatusBadRequest)
			return
		}

		user, err := store.UserByName(req.Context(), name)
		if err != nil {
			if errors.Is(err, collection.ErrUnknownUser) {
				renderError(w, "There is no collection with that name.", http.StatusNotFound)
			} else {
				slog.Error("Failed to get user", slog.Any("error", err))
				renderError(w, "We couldn't load this collection.", http.StatusInternalServerError)
			}
			return
		}

		movies, err := store.List(req.Context(), user.ID)
		if err != nil {
			slog.Error("Failed to list movies", slog.Any("error", err))
			renderError(w, "We couldn't load this collection.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := website.Render(w, user.Name, movies); err != nil {
			slog.Error("Failed to render page", slog.Any("error", err))
		}
	}
}

// userParam returns the decoded {name} segment. chi matches on RawPath when
// the request carries one, so only then is the segment still escaped.
func userParam(req *http.Request) (string, error) {
	name := chi.URLParam(req, "name")
	if req.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}
