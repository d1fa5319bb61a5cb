package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the ping endpoint response body.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the operations served on the versioned API base path.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetHealth(c *fiber.Ctx) error
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetHealth reports liveness. Dependencies are intentionally not probed here;
// a wedged database must not flap the load balancer target.
func (s *APIServer) GetHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// RegisterHandlers mounts the versioned base-path operations on the router.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/health", si.GetHealth)
}
