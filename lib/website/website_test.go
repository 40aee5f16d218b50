package website

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/icco/movies/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRenderEscapesNotes(t *testing.T) {
	movies := []models.Movie{{
		Title:  "Alien",
		Year:   "1979",
		Rating: "8.5",
		Note:   strPtr(`<script>alert("x")</script>`),
		IMDbID: strPtr("tt0078748"),
	}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "alice", movies))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "https://www.imdb.com/title/tt0078748/")
	assert.Contains(t, out, "alice&#39;s Movie App")
}

func TestRenderPlaceholders(t *testing.T) {
	movies := []models.Movie{{Title: "Obscure", Rating: "N/A"}}

	items := Items(movies)
	require.Len(t, items, 1)
	assert.Equal(t, PlaceholderPoster, items[0].Poster)
	assert.Equal(t, "#", items[0].Link)
	assert.Empty(t, items[0].Note)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "bob", movies))
	assert.Contains(t, buf.String(), "via.placeholder.com")
}

func TestRenderKeepsPoster(t *testing.T) {
	items := Items([]models.Movie{{Title: "The Matrix", PosterURL: strPtr("https://img/matrix.jpg")}})
	assert.Equal(t, "https://img/matrix.jpg", items[0].Poster)
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "carol", nil))
	assert.Contains(t, buf.String(), "No movies yet")
}

func TestGenerateWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_static")
	r := NewRenderer(dir)

	path, err := r.Generate("Mary Jane", []models.Movie{{Title: "Alien", Year: "1979", Rating: "8.5"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Mary_Jane.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alien")
	assert.Contains(t, string(data), "1979")
}
