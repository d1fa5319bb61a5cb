package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/billing"
	"github.com/flixhive/flixhive/internal/pkg/cache"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/entitlements"
	"github.com/flixhive/flixhive/internal/pkg/env"
	"github.com/flixhive/flixhive/internal/pkg/jobqueue"
	"github.com/flixhive/flixhive/internal/pkg/metadata"
	metrics "github.com/flixhive/flixhive/internal/pkg/metrics/counter"
	"github.com/flixhive/flixhive/internal/pkg/security"
	"github.com/flixhive/flixhive/internal/pkg/streaming"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

const catalogCacheTTL = 30 * time.Minute

// MovieController serves the catalog endpoints. Metadata comes from the
// external provider; rows are persisted locally on first detail lookup.
type MovieController struct {
	movieRepo repository.MovieRepository
	metadata  *metadata.Client
	streams   *streaming.Provider
}

// NewMovieController creates a movie controller with its collaborators.
func NewMovieController(movieRepo repository.MovieRepository, metadataClient *metadata.Client, streams *streaming.Provider) *MovieController {
	return &MovieController{
		movieRepo: movieRepo,
		metadata:  metadataClient,
		streams:   streams,
	}
}

// HandleSearch proxies a catalog search to the metadata provider with a
// Redis-cached result page.
func (mc *MovieController) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return JSONError(c, fiber.StatusBadRequest, "query parameter q is required")
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("catalog:search:%s:%d", strings.ToLower(query), page)
	if cached, ok := mc.cachedPage(cacheKey); ok {
		return JSONSuccess(c, mc.pageResponse(cached))
	}

	result, err := mc.metadata.SearchMovies(c.Context(), query, page)
	if err != nil {
		log.Printf("catalog: search %q failed: %v", query, err)
		return JSONError(c, fiber.StatusBadGateway, "metadata provider unavailable")
	}
	mc.cachePage(cacheKey, result)
	return JSONSuccess(c, mc.pageResponse(result))
}

// HandleTrending returns the provider's trending page, cached.
func (mc *MovieController) HandleTrending(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("catalog:trending:%d", page)
	if cached, ok := mc.cachedPage(cacheKey); ok {
		return JSONSuccess(c, mc.pageResponse(cached))
	}

	result, err := mc.metadata.GetTrending(c.Context(), page)
	if err != nil {
		log.Printf("catalog: trending failed: %v", err)
		return JSONError(c, fiber.StatusBadGateway, "metadata provider unavailable")
	}
	mc.cachePage(cacheKey, result)
	return JSONSuccess(c, mc.pageResponse(result))
}

// HandleGetMovie serves a movie by TMDB id, fetching and persisting it on
// first access.
func (mc *MovieController) HandleGetMovie(c *fiber.Ctx) error {
	tmdbID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid movie id")
	}

	movie, err := mc.movieRepo.GetByTmdbID(tmdbID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("catalog: movie lookup failed for %d: %v", tmdbID, err)
			return JSONError(c, fiber.StatusInternalServerError, "failed to load movie")
		}
		movie, err = mc.importMovie(c.Context(), tmdbID)
		if err != nil {
			if errors.Is(err, errMovieNotFound) {
				return JSONError(c, fiber.StatusNotFound, "movie not found")
			}
			log.Printf("catalog: movie import failed for %d: %v", tmdbID, err)
			return JSONError(c, fiber.StatusBadGateway, "metadata provider unavailable")
		}
	}

	return JSONSuccess(c, mc.movieResponse(movie))
}

// HandleListGenres returns the genre list, syncing it from the provider the
// first time the table is empty.
func (mc *MovieController) HandleListGenres(c *fiber.Ctx) error {
	genres, err := mc.movieRepo.ListGenres()
	if err != nil {
		log.Printf("catalog: genre list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load genres")
	}
	if len(genres) == 0 {
		genres, err = mc.syncGenres(c.Context())
		if err != nil {
			log.Printf("catalog: genre sync failed: %v", err)
			return JSONError(c, fiber.StatusBadGateway, "metadata provider unavailable")
		}
	}
	return JSONSuccess(c, genres)
}

// HandleGetStream gates playback behind the caller's entitlement, hands out
// the provider embed URL plus a signed stream token, and bumps the view
// counter.
func (mc *MovieController) HandleGetStream(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	tmdbID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid movie id")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusNotFound, "user not found")
	}

	// The plan tier lives on the subscription row, so the latest row has to
	// be loaded for yearly subscribers to get their full allowance.
	var sub *models.Subscription
	if latest, subErr := billing.NewRepository(database.GetDB()).GetLatestSubscriptionByUser(user.ID); subErr == nil {
		sub = latest
	} else if !errors.Is(subErr, gorm.ErrRecordNotFound) {
		log.Printf("stream: subscription lookup failed for user %d: %v", user.ID, subErr)
	}

	allowed, maxQuality := streamGrant(user, sub)
	if !allowed {
		return JSONError(c, fiber.StatusForbidden, "an active subscription is required for playback")
	}

	movie, err := mc.movieRepo.GetByTmdbID(tmdbID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "movie not found")
		}
		log.Printf("stream: movie lookup failed for %d: %v", tmdbID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load movie")
	}

	streamURL, err := mc.streams.EmbedURL(movie.TmdbID)
	if err != nil {
		return JSONError(c, fiber.StatusInternalServerError, "stream link unavailable")
	}

	ttl := time.Hour
	expiresAt := time.Now().Add(ttl)
	token, err := security.GenerateStreamToken(user.ID, movie.ID, maxQuality, ttl, env.GetEnv("STREAM_TOKEN_SECRET", ""))
	if err != nil {
		log.Printf("stream: token generation failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "stream token unavailable")
	}

	if err := metrics.AddMovieView(movie.ID); err != nil {
		log.Printf("stream: view counter failed for movie %d: %v", movie.ID, err)
	}

	return JSONSuccess(c, fiber.Map{
		"stream_url": streamURL,
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"quality":    maxQuality,
	})
}

// streamGrant resolves the playback allowance from the user row and the
// latest subscription row (nil when none exists). Admins stream at the
// highest tier even without a subscription.
func streamGrant(user *models.User, sub *models.Subscription) (allowed bool, maxQuality string) {
	ent := entitlements.ForUser(user, sub)
	if !ent.CanStream && !user.IsAdmin() {
		return false, ""
	}
	maxQuality = ent.MaxQuality
	if maxQuality == "" {
		maxQuality = entitlements.QualityUHD
	}
	return true, maxQuality
}

var errMovieNotFound = errors.New("movie not found at provider")

func (mc *MovieController) importMovie(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	details, err := mc.metadata.GetMovieDetails(ctx, tmdbID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, errMovieNotFound
		}
		return nil, err
	}

	movie := &models.Movie{
		TmdbID:        details.TmdbID,
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
		Overview:      details.Overview,
		Tagline:       details.Tagline,
		ReleaseDate:   metadata.ParseReleaseDate(details.ReleaseDate),
		Runtime:       details.Runtime,
		PosterPath:    details.PosterPath,
		BackdropPath:  details.BackdropPath,
		VoteAverage:   details.VoteAverage,
		VoteCount:     int(details.VoteCount),
		Popularity:    details.Popularity,
		Adult:         details.Adult,
		OriginalLang:  details.OriginalLang,
	}
	if err := mc.movieRepo.Create(movie); err != nil {
		// A concurrent import may have won the race; serve its row.
		if existing, lookupErr := mc.movieRepo.GetByTmdbID(tmdbID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	if len(details.Genres) > 0 {
		genres := make([]models.Genre, 0, len(details.Genres))
		for _, g := range details.Genres {
			genres = append(genres, models.Genre{TmdbID: g.TmdbID, Name: g.Name})
		}
		stored, err := mc.movieRepo.UpsertGenres(genres)
		if err != nil {
			log.Printf("catalog: genre upsert failed for movie %d: %v", tmdbID, err)
		} else if err := mc.movieRepo.ReplaceGenres(movie, stored); err != nil {
			log.Printf("catalog: genre link failed for movie %d: %v", tmdbID, err)
		}
	}

	settings := models.GetAppSettings()
	if settings != nil && settings.IsArtworkMirrorEnabled() {
		if _, err := jobqueue.GetManager().GetQueue().EnqueueArtworkCacheJob(movie.ID, movie.TmdbID, movie.PosterPath, movie.BackdropPath); err != nil {
			log.Printf("catalog: artwork job enqueue failed for movie %d: %v", movie.ID, err)
		}
	}

	return movie, nil
}

func (mc *MovieController) syncGenres(ctx context.Context) ([]models.Genre, error) {
	providerGenres, err := mc.metadata.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	genres := make([]models.Genre, 0, len(providerGenres))
	for _, g := range providerGenres {
		genres = append(genres, models.Genre{TmdbID: g.TmdbID, Name: g.Name})
	}
	if _, err := mc.movieRepo.UpsertGenres(genres); err != nil {
		return nil, err
	}
	return mc.movieRepo.ListGenres()
}

func (mc *MovieController) cachedPage(key string) (*metadata.MoviePage, bool) {
	raw, err := cache.Get(key)
	if err != nil || raw == "" {
		return nil, false
	}
	var page metadata.MoviePage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (mc *MovieController) cachePage(key string, page *metadata.MoviePage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := cache.Set(key, string(raw), catalogCacheTTL); err != nil {
		log.Printf("catalog: cache write failed for %s: %v", key, err)
	}
}

func (mc *MovieController) pageResponse(page *metadata.MoviePage) fiber.Map {
	results := make([]fiber.Map, 0, len(page.Results))
	for _, m := range page.Results {
		results = append(results, fiber.Map{
			"tmdb_id":      m.TmdbID,
			"title":        m.Title,
			"overview":     m.Overview,
			"release_date": m.ReleaseDate,
			"vote_average": m.VoteAverage,
			"poster_url":   mc.metadata.ImageURL(m.PosterPath, metadata.PosterSize),
			"backdrop_url": mc.metadata.ImageURL(m.BackdropPath, metadata.BackdropSize),
		})
	}
	return fiber.Map{
		"page":          page.Page,
		"total_pages":   page.TotalPages,
		"total_results": page.TotalResults,
		"results":       results,
	}
}

func (mc *MovieController) movieResponse(movie *models.Movie) fiber.Map {
	posterURL := mc.metadata.ImageURL(movie.PosterPath, metadata.PosterSize)
	backdropURL := mc.metadata.ImageURL(movie.BackdropPath, metadata.BackdropSize)
	return fiber.Map{
		"movie":        movie,
		"poster_url":   posterURL,
		"backdrop_url": backdropURL,
	}
}
