package streaming

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flixhive/flixhive/internal/pkg/env"
)

const defaultProviderBaseURL = "https://vidsrc.xyz"

// Provider resolves playback embed URLs for movies. The provider hosts the
// actual video delivery; we only hand out links and never proxy the stream.
type Provider struct {
	BaseURL string

	HTTPClient *http.Client
}

func NewProviderFromEnv() *Provider {
	return &Provider{
		BaseURL: strings.TrimRight(env.GetEnv("STREAM_PROVIDER_BASE_URL", defaultProviderBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EmbedURL builds the playback URL for a movie by its TMDB id.
func (p *Provider) EmbedURL(tmdbID int64) (string, error) {
	if tmdbID <= 0 {
		return "", errors.New("movie id is required")
	}
	return fmt.Sprintf("%s/embed/movie/%d", p.BaseURL, tmdbID), nil
}

// CheckAvailability probes the provider for the movie. A false result means
// the provider answered but has no source; errors mean the probe itself
// failed and availability is unknown.
func (p *Provider) CheckAvailability(ctx context.Context, tmdbID int64) (bool, error) {
	embedURL, err := p.EmbedURL(tmdbID)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, embedURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("stream provider probe failed: status=%d", resp.StatusCode)
	}
	return true, nil
}
