package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header carries the request id in both directions.
	Header = "X-Ray-ID"
	// LocalKey is the fiber Locals key read by logger.WithRayID.
	LocalKey = "ray_id"
)

// New returns a middleware that tags every request with a RayID. An id sent
// by the client in Header is kept; otherwise a UUID is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
