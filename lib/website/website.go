package website

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/icco/movies/lib/validation"
	"github.com/icco/movies/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PlaceholderPoster stands in for movies without artwork.
const PlaceholderPoster = "https://via.placeholder.com/300x450?text=No+Image"

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Item is one rendered grid entry.
type Item struct {
	Title  string
	Year   string
	Rating string
	Poster string
	Link   string
	Note   string
}

type page struct {
	Title  string
	Movies []Item
}

// PageTitle is the heading of a user's page.
func PageTitle(username string) string {
	return fmt.Sprintf("%s's Movie App", username)
}

// Items converts movies into grid entries, filling in the placeholder poster
// and a "#" link where data is missing.
func Items(movies []models.Movie) []Item {
	items := make([]Item, 0, len(movies))
	for _, m := range movies {
		item := Item{
			Title:  m.Title,
			Year:   m.Year,
			Rating: m.Rating,
			Poster: m.Poster(),
			Link:   m.IMDbURL(),
			Note:   m.NoteText(),
		}
		if item.Poster == "" {
			item.Poster = PlaceholderPoster
		}
		if item.Link == "" {
			item.Link = "#"
		}
		items = append(items, item)
	}
	return items
}

// Render writes username's page to w. html/template escapes every field, so
// notes cannot inject markup.
func Render(w io.Writer, username string, movies []models.Movie) error {
	if err := pageTemplate.Execute(w, page{Title: PageTitle(username), Movies: Items(movies)}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// Renderer writes pages into a directory.
type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Generate renders username's page to <dir>/<username>.html and returns the path.
func (r *Renderer) Generate(username string, movies []models.Movie) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, username, movies); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(r.dir, validation.SafeFilename(username)+".html")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}
	return path, nil
}
