package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type BasicHandler struct{}

var _ Route = &BasicHandler{}

func (r *BasicHandler) Filter() (method string, path string) {
	panic("handler did not implement Filter method")
}

func (r *BasicHandler) ToCache() CacheSetting {
	return Disabled
}

// CacheDuration of zero falls back to the configured gallery cache duration.
func (r *BasicHandler) CacheDuration() time.Duration {
	return 0
}

func (r *BasicHandler) Render(c *fiber.Ctx, supplements *Supplements) (statusCode int, payload any, err error) {
	return fiber.StatusNoContent, nil, nil
}
