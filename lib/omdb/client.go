package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/icco/movies/lib/validation"
)

const (
	DefaultBaseURL = "http://www.omdbapi.com/"
	DefaultTimeout = 5 * time.Second

	// notAvailable is how OMDb spells a missing value.
	notAvailable = "N/A"

	maxBodySize = 1 << 20
)

var (
	// ErrNotFound means OMDb answered and has no match for the title.
	ErrNotFound = errors.New("movie not found")
	// ErrUnavailable means the lookup could not be completed; try again later.
	ErrUnavailable = errors.New("movie database unavailable")
)

// Metadata is the canonical film data reported for a title lookup.
type Metadata struct {
	Title     string
	Year      string
	Rating    string
	PosterURL string
	IMDbID    string
}

type lookupResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	ImdbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	ImdbID     string `json:"imdbID"`
}

// Client looks titles up on the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another OMDb-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout bounds every lookup; a call that runs past it is reported as ErrUnavailable.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithHTTPClient sends requests through httpClient. The client itself is never modified.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger used for lookup tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a Client for apiKey with a DefaultTimeout deadline unless
// an option says otherwise.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = c.timeout
	c.httpClient = &hc
	return c
}

// Lookup fetches metadata for a free-text title. Failures wrap ErrNotFound or
// ErrUnavailable. There are no retries.
func (c *Client) Lookup(ctx context.Context, title string) (*Metadata, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: OMDb API key not configured", ErrUnavailable)
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", ErrUnavailable, err)
	}
	params := reqURL.Query()
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}

	c.logger.DebugContext(ctx, "Looking up movie", slog.String("title", title))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %w", ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	if err := validation.ValidateOMDbResponse(body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}

	if result.Response == "False" {
		reason := result.Error
		if reason == "" {
			reason = "no match"
		}
		return nil, fmt.Errorf("%w: %q (%s)", ErrNotFound, title, reason)
	}
	if result.Title == "" {
		return nil, fmt.Errorf("%w: response has no title", ErrUnavailable)
	}

	c.logger.DebugContext(ctx, "Found movie",
		slog.String("title", result.Title),
		slog.String("imdb_id", result.ImdbID))

	return &Metadata{
		Title:     result.Title,
		Year:      result.Year,
		Rating:    result.ImdbRating,
		PosterURL: present(result.Poster),
		IMDbID:    present(result.ImdbID),
	}, nil
}

// present maps OMDb's "N/A" placeholder to an absent value.
func present(s string) string {
	if s == notAvailable {
		return ""
	}
	return s
}
