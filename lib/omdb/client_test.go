package omdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithBaseURL(srv.URL + "/"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return NewClient("test-key", opts...)
}

func TestLookupSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "the matrix", r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Title":"The Matrix","Year":"1999","imdbRating":"8.7","Poster":"https://img/matrix.jpg","imdbID":"tt0133093","Response":"True"}`)
	})

	meta, err := client.Lookup(context.Background(), "the matrix")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{
		Title:     "The Matrix",
		Year:      "1999",
		Rating:    "8.7",
		PosterURL: "https://img/matrix.jpg",
		IMDbID:    "tt0133093",
	}, meta)
}

func TestLookupMissingFieldsPassThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"Title":"Obscure","Year":"","imdbRating":"N/A","Poster":"N/A","Response":"True"}`)
	})

	meta, err := client.Lookup(context.Background(), "obscure")
	require.NoError(t, err)
	assert.Equal(t, "Obscure", meta.Title)
	assert.Equal(t, "N/A", meta.Rating)
	assert.Empty(t, meta.PosterURL)
	assert.Empty(t, meta.IMDbID)
}

func TestLookupNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"Response":"False","Error":"Movie not found!"}`)
	})

	_, err := client.Lookup(context.Background(), "zzzz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestLookupUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "invalid api key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"Response":"False","Error":"Invalid API key!"}`)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `<html>oops</html>`)
			},
		},
		{
			name: "wrong field types",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"Response":"True","Title":"X","imdbRating":8.1}`)
			},
		},
		{
			name: "missing title",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"Response":"True"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Lookup(context.Background(), "alien")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLookupTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.Lookup(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	for _, opts := range [][]Option{
		{WithHTTPClient(shared), WithTimeout(2 * time.Second)},
		{WithTimeout(2 * time.Second), WithHTTPClient(shared)},
	} {
		client := NewClient("test-key", opts...)
		assert.Equal(t, 2*time.Second, client.httpClient.Timeout)
		assert.NotSame(t, shared, client.httpClient)
	}
	assert.Equal(t, time.Minute, shared.Timeout)

	client := NewClient("test-key", WithHTTPClient(shared))
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := NewClient("test-key", WithBaseURL(addr), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := client.Lookup(context.Background(), "alien")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookupWithoutAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Lookup(context.Background(), "alien")
	assert.ErrorIs(t, err, ErrUnavailable)
}
