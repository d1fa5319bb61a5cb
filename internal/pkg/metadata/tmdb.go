package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flixhive/flixhive/internal/pkg/env"
)

const (
	defaultTMDBAPIBaseURL   = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL = "https://image.tmdb.org/t/p"

	// PosterSize and BackdropSize are the provider size segments used when
	// building image URLs for API responses.
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

// Client talks to a TMDB-compatible metadata API. All methods are read-only;
// persistence of fetched records is the caller's concern.
type Client struct {
	APIKey       string
	APIBaseURL   string
	ImageBaseURL string

	HTTPClient *http.Client
}

type Movie struct {
	TmdbID        int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	Adult         bool    `json:"adult"`
	OriginalLang  string  `json:"original_language"`
	GenreIDs      []int64 `json:"genre_ids"`
}

type MovieDetails struct {
	Movie
	Tagline string  `json:"tagline"`
	Runtime int     `json:"runtime"`
	Genres  []Genre `json:"genres"`
}

type Genre struct {
	TmdbID int64  `json:"id"`
	Name   string `json:"name"`
}

// MoviePage is one page of a paginated provider listing.
type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int64   `json:"total_results"`
	Results      []Movie `json:"results"`
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:       strings.TrimSpace(env.GetEnv("TMDB_API_KEY", "")),
		APIBaseURL:   strings.TrimRight(env.GetEnv("TMDB_API_BASE_URL", defaultTMDBAPIBaseURL), "/"),
		ImageBaseURL: strings.TrimRight(env.GetEnv("TMDB_IMAGE_BASE_URL", defaultTMDBImageBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) IsConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ImageURL turns a provider image path into a full URL. Returns "" for empty
// paths so callers can pass it straight into API responses.
func (c *Client) ImageURL(path string, size string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.ImageBaseURL + "/" + size + path
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var out MoviePage
	if err := c.get(ctx, "/search/movie", params, &out); err != nil {
		return nil, fmt.Errorf("tmdb search failed: %w", err)
	}
	return &out, nil
}

func (c *Client) GetTrending(ctx context.Context, page int) (*MoviePage, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var out MoviePage
	if err := c.get(ctx, "/trending/movie/week", params, &out); err != nil {
		return nil, fmt.Errorf("tmdb trending failed: %w", err)
	}
	return &out, nil
}

func (c *Client) GetMovieDetails(ctx context.Context, tmdbID int64) (*MovieDetails, error) {
	if tmdbID <= 0 {
		return nil, errors.New("movie id is required")
	}

	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", tmdbID), nil, &out); err != nil {
		return nil, fmt.Errorf("tmdb movie details failed: %w", err)
	}
	if out.TmdbID == 0 {
		return nil, errors.New("tmdb movie details response missing id")
	}
	return &out, nil
}

func (c *Client) ListGenres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, fmt.Errorf("tmdb genre list failed: %w", err)
	}
	return out.Genres, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if !c.IsConfigured() {
		return errors.New("TMDB_API_KEY is not configured")
	}

	u, err := url.Parse(c.APIBaseURL + path)
	if err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.APIKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}

// ErrNotFound is returned when the provider has no record for the requested id.
var ErrNotFound = errors.New("metadata: not found")

// ParseReleaseDate converts the provider's YYYY-MM-DD date into a time value.
// Empty and malformed dates yield nil; several provider records carry no date.
func ParseReleaseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
