package controllers

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/jobqueue"
)

// AdminQueueController exposes the Redis-backed queue and cache monitor.
type AdminQueueController struct {
	queueRepo repository.QueueRepository
}

// NewAdminQueueController creates a new admin queue controller with repository.
func NewAdminQueueController(queueRepo repository.QueueRepository) *AdminQueueController {
	return &AdminQueueController{
		queueRepo: queueRepo,
	}
}

type queueItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
	TTL   int64  `json:"ttl_seconds"`
	Size  int64  `json:"size_bytes"`
}

// HandleListQueues returns every cache/queue key with metadata plus the
// aggregate job statistics.
func (aqc *AdminQueueController) HandleListQueues(c *fiber.Ctx) error {
	items, err := aqc.getQueueItems()
	if err != nil {
		log.Printf("admin: queue listing failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load queue data")
	}

	stats, err := jobqueue.GetManager().GetQueue().GetJobStats(c.Context())
	if err != nil {
		log.Printf("admin: job stats failed: %v", err)
		stats = map[jobqueue.JobStatus]int64{}
	}

	return JSONSuccess(c, fiber.Map{
		"items":     items,
		"job_stats": stats,
	})
}

// HandleDeleteQueueKey removes a single cache entry.
func (aqc *AdminQueueController) HandleDeleteQueueKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return JSONError(c, fiber.StatusBadRequest, "key is required")
	}

	result, err := aqc.queueRepo.DeleteKey(key)
	if err != nil {
		log.Printf("admin: queue key delete failed for %s: %v", key, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to delete key")
	}
	if result == 0 {
		return JSONError(c, fiber.StatusNotFound, "key not found")
	}
	return JSONSuccessMessage(c, nil, "key deleted")
}

type bulkDeleteRequest struct {
	Patterns []string `json:"patterns" validate:"required,min=1,dive,required"`
}

// HandleBulkDelete removes all keys matching the given patterns.
func (aqc *AdminQueueController) HandleBulkDelete(c *fiber.Ctx) error {
	var req bulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return JSONValidationError(c, err)
	}

	keys, err := aqc.queueRepo.FindKeysByPatterns(req.Patterns)
	if err != nil {
		log.Printf("admin: queue pattern scan failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to scan keys")
	}
	if len(keys) == 0 {
		return JSONSuccess(c, fiber.Map{"deleted": 0})
	}

	deleted, err := aqc.queueRepo.DeleteKeys(keys)
	if err != nil {
		log.Printf("admin: queue bulk delete failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to delete keys")
	}
	return JSONSuccess(c, fiber.Map{"deleted": deleted})
}

// getQueueItems retrieves all cache entries with their metadata.
func (aqc *AdminQueueController) getQueueItems() ([]queueItem, error) {
	keys, err := aqc.queueRepo.GetAllKeys()
	if err != nil {
		return nil, err
	}

	items := make([]queueItem, 0, len(keys))
	for _, key := range keys {
		value, err := aqc.queueRepo.GetValue(key)
		if err != nil && err != redis.Nil {
			continue
		}

		ttl, err := aqc.queueRepo.GetTTL(key)
		if err != nil {
			ttl = -1
		}

		itemType := "unknown"
		displayValue := value

		switch {
		case strings.HasPrefix(key, jobqueue.JobKeyPrefix):
			itemType = "job"
			displayValue = jobStatusFromValue(value)
		case key == jobqueue.JobQueueKey:
			itemType = "job_queue"
			size, _ := aqc.queueRepo.GetListLength(key)
			displayValue = fmt.Sprintf("pending jobs: %d", size)
		case key == jobqueue.JobProcessingKey:
			itemType = "job_processing"
			size, _ := aqc.queueRepo.GetListLength(key)
			displayValue = fmt.Sprintf("jobs in flight: %d", size)
		case key == jobqueue.JobStatsKey:
			itemType = "job_stats"
			displayValue = "job statistics"
		case strings.HasPrefix(key, "catalog:"):
			itemType = "catalog_cache"
		case strings.HasPrefix(key, "auth:revoked:"):
			itemType = "revoked_token"
			displayValue = "revoked"
		case strings.HasPrefix(key, "stats:"):
			itemType = "statistics"
		case strings.HasPrefix(key, "views:"):
			itemType = "view_counter"
		}

		items = append(items, queueItem{
			Key:   key,
			Value: displayValue,
			Type:  itemType,
			TTL:   int64(ttl.Seconds()),
			Size:  int64(len(value)),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].Key < items[j].Key
	})

	return items, nil
}

// jobStatusFromValue extracts job status from JSON job data without a full parse.
func jobStatusFromValue(jsonValue string) string {
	for _, status := range []string{"pending", "processing", "completed", "failed", "retrying"} {
		if strings.Contains(jsonValue, `"status":"`+status+`"`) {
			return status
		}
	}
	return "unknown"
}
