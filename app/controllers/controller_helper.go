package controllers

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 20
const maxPageSize = 100

var validate = validator.New()

// JSONSuccess wraps data in the platform's standard response envelope.
func JSONSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// JSONSuccessMessage wraps data plus a human-readable message.
func JSONSuccessMessage(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(fiber.Map{"success": true, "data": data, "message": message})
}

// JSONCreated is JSONSuccess with a 201 status.
func JSONCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// JSONError answers with the envelope and a generic message. Internal detail
// never leaves the process; callers log it before calling this.
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// JSONValidationError converts validator errors into a field-level detail map.
func JSONValidationError(c *fiber.Ctx, err error) error {
	details := fiber.Map{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[strings.ToLower(fe.Field())] = "failed on " + fe.Tag()
		}
	} else if err != nil {
		details["request"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation failed",
		"details": details,
	})
}

// ParsePagination reads page/per_page query parameters with sane bounds and
// returns the resulting offset.
func ParsePagination(c *fiber.Ctx) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.Query("per_page", strconv.Itoa(defaultPageSize)))
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	return page, perPage, (page - 1) * perPage
}

// GetClientIP determines the actual client IP address considering proxies and
// dual stack. Returns both IPv4 and IPv6 addresses if available.
func GetClientIP(c *fiber.Ctx) (string, string) {
	ipv4, ipv6 := "", ""

	assign := func(ip string) {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			return
		}
		if strings.HasPrefix(ip, "::ffff:") && strings.Contains(ip, ".") {
			ip = strings.TrimPrefix(ip, "::ffff:")
		}
		if strings.Contains(ip, ":") {
			if ipv6 == "" {
				ipv6 = ip
			}
		} else if ipv4 == "" {
			ipv4 = ip
		}
	}

	// Cloudflare puts the original client IP here; X-Forwarded-For may carry
	// the other address family.
	assign(c.Get("CF-Connecting-IP"))
	for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
		assign(ip)
	}
	assign(c.Get("X-Real-IP"))
	assign(c.IP())

	return ipv4, ipv6
}
