package controllers

import (
	"errors"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

// AnnouncementController serves operator announcements. The public handlers
// only ever see published posts; drafts stay admin-only.
type AnnouncementController struct {
	announcementRepo repository.AnnouncementRepository
}

// NewAnnouncementController creates an announcement controller.
func NewAnnouncementController(announcementRepo repository.AnnouncementRepository) *AnnouncementController {
	return &AnnouncementController{announcementRepo: announcementRepo}
}

// HandleListPublished returns published announcements, newest first.
func (ac *AnnouncementController) HandleListPublished(c *fiber.Ctx) error {
	page, perPage, offset := ParsePagination(c)

	announcements, err := ac.announcementRepo.GetPublished(offset, perPage)
	if err != nil {
		log.Printf("announcements: list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load announcements")
	}
	return JSONSuccess(c, fiber.Map{
		"announcements": announcements,
		"page":          page,
		"per_page":      perPage,
	})
}

// HandleGetBySlug returns a single published announcement.
func (ac *AnnouncementController) HandleGetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	announcement, err := ac.announcementRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "announcement not found")
		}
		log.Printf("announcements: lookup failed for %s: %v", slug, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load announcement")
	}
	if !announcement.Published {
		return JSONError(c, fiber.StatusNotFound, "announcement not found")
	}
	return JSONSuccess(c, announcement)
}

// HandleAdminList returns all announcements including drafts.
func (ac *AnnouncementController) HandleAdminList(c *fiber.Ctx) error {
	page, perPage, offset := ParsePagination(c)

	announcements, err := ac.announcementRepo.GetAll(offset, perPage)
	if err != nil {
		log.Printf("announcements: admin list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load announcements")
	}
	return JSONSuccess(c, fiber.Map{
		"announcements": announcements,
		"page":          page,
		"per_page":      perPage,
	})
}

type announcementRequest struct {
	Title     string `json:"title" validate:"required,min=3,max=255"`
	Slug      string `json:"slug" validate:"omitempty,min=3,max=255"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

// HandleAdminCreate creates an announcement. An empty slug is derived from
// the title.
func (ac *AnnouncementController) HandleAdminCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return JSONValidationError(c, err)
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}
	exists, err := ac.announcementRepo.SlugExists(slug)
	if err != nil {
		log.Printf("announcements: slug check failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to create announcement")
	}
	if exists {
		return JSONError(c, fiber.StatusConflict, "an announcement with this slug already exists")
	}

	announcement := &models.Announcement{
		UserID:    userCtx.UserID,
		Title:     req.Title,
		Slug:      slug,
		Body:      req.Body,
		Published: req.Published,
	}
	if req.Published {
		now := time.Now()
		announcement.PublishedAt = &now
	}
	if err := ac.announcementRepo.Create(announcement); err != nil {
		log.Printf("announcements: create failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to create announcement")
	}
	return JSONCreated(c, announcement)
}

// HandleAdminUpdate edits an announcement. Publishing for the first time
// stamps PublishedAt; re-publishing keeps the original timestamp.
func (ac *AnnouncementController) HandleAdminUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	announcement, err := ac.announcementRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "announcement not found")
		}
		log.Printf("announcements: lookup failed for %d: %v", id, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update announcement")
	}

	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return JSONValidationError(c, err)
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}
	if slug != announcement.Slug {
		exists, err := ac.announcementRepo.SlugExists(slug)
		if err != nil {
			log.Printf("announcements: slug check failed: %v", err)
			return JSONError(c, fiber.StatusInternalServerError, "failed to update announcement")
		}
		if exists {
			return JSONError(c, fiber.StatusConflict, "an announcement with this slug already exists")
		}
	}

	announcement.Title = req.Title
	announcement.Slug = slug
	announcement.Body = req.Body
	if req.Published && announcement.PublishedAt == nil {
		now := time.Now()
		announcement.PublishedAt = &now
	}
	announcement.Published = req.Published

	if err := ac.announcementRepo.Update(announcement); err != nil {
		log.Printf("announcements: update failed for %d: %v", id, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update announcement")
	}
	return JSONSuccess(c, announcement)
}

// HandleAdminDelete removes an announcement.
func (ac *AnnouncementController) HandleAdminDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	if _, err := ac.announcementRepo.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "announcement not found")
		}
		log.Printf("announcements: lookup failed for %d: %v", id, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to delete announcement")
	}
	if err := ac.announcementRepo.Delete(uint(id)); err != nil {
		log.Printf("announcements: delete failed for %d: %v", id, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to delete announcement")
	}
	return JSONSuccessMessage(c, nil, "announcement deleted")
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := slugCleanup.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
