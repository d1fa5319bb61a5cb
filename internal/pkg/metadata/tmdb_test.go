package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		APIKey:       "test-key",
		APIBaseURL:   ts.URL,
		ImageBaseURL: "https://image.example.com/t/p",
		HTTPClient:   ts.Client(),
	}
}

func TestSearchMovies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			t.Fatalf("expected api key on request, got %q", q.Get("api_key"))
		}
		if q.Get("query") != "matrix" || q.Get("page") != "2" {
			t.Fatalf("unexpected query params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 2,
			"total_pages": 5,
			"total_results": 93,
			"results": [
				{
					"id": 603,
					"title": "The Matrix",
					"overview": "A hacker learns the truth.",
					"poster_path": "/poster.jpg",
					"release_date": "1999-03-30",
					"vote_average": 8.2,
					"genre_ids": [28, 878]
				}
			]
		}`))
	}))
	defer ts.Close()

	page, err := testClient(ts).SearchMovies(context.Background(), "matrix", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 2 || page.TotalResults != 93 {
		t.Fatalf("unexpected page meta: %+v", page)
	}
	if len(page.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(page.Results))
	}
	m := page.Results[0]
	if m.TmdbID != 603 || m.Title != "The Matrix" {
		t.Fatalf("unexpected movie: %+v", m)
	}
	if len(m.GenreIDs) != 2 {
		t.Fatalf("expected 2 genre ids, got %d", len(m.GenreIDs))
	}
}

func TestSearchMoviesRequiresQuery(t *testing.T) {
	c := &Client{APIKey: "test-key", APIBaseURL: "https://example.com", HTTPClient: http.DefaultClient}
	if _, err := c.SearchMovies(context.Background(), "   ", 1); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestGetMovieDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"tagline": "Welcome to the Real World.",
			"runtime": 136,
			"release_date": "1999-03-30",
			"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]
		}`))
	}))
	defer ts.Close()

	details, err := testClient(ts).GetMovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.TmdbID != 603 || details.Runtime != 136 {
		t.Fatalf("unexpected details: %+v", details)
	}
	if len(details.Genres) != 2 || details.Genres[1].Name != "Science Fiction" {
		t.Fatalf("unexpected genres: %+v", details.Genres)
	}
}

func TestGetMovieDetailsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code": 34, "status_message": "not found"}`))
	}))
	defer ts.Close()

	_, err := testClient(ts).GetMovieDetails(context.Background(), 999999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGenres(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}, {"id": 35, "name": "Comedy"}]}`))
	}))
	defer ts.Close()

	genres, err := testClient(ts).ListGenres(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Action" {
		t.Fatalf("unexpected genres: %+v", genres)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := &Client{APIBaseURL: "https://example.com", HTTPClient: http.DefaultClient}
	if c.IsConfigured() {
		t.Fatalf("expected client without key to be unconfigured")
	}
	if _, err := c.GetTrending(context.Background(), 1); err == nil {
		t.Fatalf("expected error from unconfigured client")
	}
}

func TestImageURL(t *testing.T) {
	c := &Client{ImageBaseURL: "https://image.example.com/t/p"}

	if got := c.ImageURL("", PosterSize); got != "" {
		t.Fatalf("expected empty URL for empty path, got %q", got)
	}
	want := "https://image.example.com/t/p/w500/poster.jpg"
	if got := c.ImageURL("/poster.jpg", PosterSize); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := c.ImageURL("poster.jpg", PosterSize); got != want {
		t.Fatalf("expected missing slash to be normalized, got %q", got)
	}
}

func TestParseReleaseDate(t *testing.T) {
	if got := ParseReleaseDate("1999-03-30"); got == nil || !got.Equal(time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parse result: %v", got)
	}
	if got := ParseReleaseDate(""); got != nil {
		t.Fatalf("expected nil for empty date, got %v", got)
	}
	if got := ParseReleaseDate("not-a-date"); got != nil {
		t.Fatalf("expected nil for malformed date, got %v", got)
	}
}
