package jobqueue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/internal/pkg/artworkmirror"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/metadata"
)

// artworkHTTPClient fetches artwork bytes from the metadata CDN
var artworkHTTPClient = &http.Client{Timeout: 30 * time.Second}

// maxArtworkBytes caps a single artwork download (posters are well under this)
const maxArtworkBytes = 10 << 20

// processArtworkCacheJob mirrors a movie's poster and backdrop into object
// storage and stores the object keys on the movie row.
func (q *Queue) processArtworkCacheJob(ctx context.Context, job *Job) error {
	payload, err := ArtworkCacheJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse artwork cache job payload: %w", err)
	}

	log.Infof("[ArtworkMirror] Processing artwork job for movie %d (TMDB: %d)", payload.MovieID, payload.TmdbID)

	config, err := artworkmirror.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load artwork mirror config: %w", err)
	}
	if !config.IsEnabled() {
		return fmt.Errorf("artwork mirror is disabled")
	}

	mirror, err := artworkmirror.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create artwork mirror client: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var movie models.Movie
	if err := db.First(&movie, payload.MovieID).Error; err != nil {
		return fmt.Errorf("failed to find movie %d: %w", payload.MovieID, err)
	}

	meta := metadata.NewClientFromEnv()
	now := time.Now()
	updates := map[string]interface{}{}

	if payload.PosterPath != "" {
		key := config.GetObjectKey(payload.TmdbID, "poster", now.Year(), int(now.Month()))
		if err := q.mirrorArtwork(ctx, mirror, meta.ImageURL(payload.PosterPath, metadata.PosterSize), key); err != nil {
			return fmt.Errorf("failed to mirror poster: %w", err)
		}
		updates["poster_object_key"] = key
	}

	if payload.BackdropPath != "" {
		key := config.GetObjectKey(payload.TmdbID, "backdrop", now.Year(), int(now.Month()))
		if err := q.mirrorArtwork(ctx, mirror, meta.ImageURL(payload.BackdropPath, metadata.BackdropSize), key); err != nil {
			return fmt.Errorf("failed to mirror backdrop: %w", err)
		}
		updates["backdrop_object_key"] = key
	}

	if len(updates) == 0 {
		log.Warnf("[ArtworkMirror] Movie %d has no artwork paths, nothing to mirror", payload.MovieID)
		return nil
	}

	if err := db.Model(&movie).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to store artwork keys: %w", err)
	}

	log.Infof("[ArtworkMirror] Successfully mirrored artwork for movie %d", payload.MovieID)
	return nil
}

// mirrorArtwork downloads one artwork file and uploads it unchanged
func (q *Queue) mirrorArtwork(ctx context.Context, mirror *artworkmirror.Client, sourceURL, objectKey string) error {
	if sourceURL == "" {
		return fmt.Errorf("artwork source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}

	resp, err := artworkHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("artwork fetch failed: status=%d url=%s", resp.StatusCode, sourceURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes))
	if err != nil {
		return fmt.Errorf("failed to read artwork: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if _, err := mirror.Upload(ctx, objectKey, data, contentType); err != nil {
		return err
	}
	return nil
}

// EnqueueArtworkCacheJob creates and enqueues an artwork mirror job
func (q *Queue) EnqueueArtworkCacheJob(movieID uint, tmdbID int64, posterPath, backdropPath string) (*Job, error) {
	payload := ArtworkCacheJobPayload{
		MovieID:      movieID,
		TmdbID:       tmdbID,
		PosterPath:   posterPath,
		BackdropPath: backdropPath,
	}

	return q.EnqueueJob(JobTypeArtworkCache, payload.ToMap())
}
