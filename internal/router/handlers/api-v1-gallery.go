package handlers

import (
	"fmt"
	"log/slog"

	"github.com/SayaAndy/saya-today-gallery/internal/router"
	"github.com/gofiber/fiber/v2"
)

func init() {
	router.Routes = append(router.Routes, &GalleryHandler{})
}

type GalleryHandler struct {
	router.BasicHandler
}

func (r *GalleryHandler) Filter() (method string, path string) {
	return "GET", "/api/v1/gallery"
}

func (r *GalleryHandler) ToCache() router.CacheSetting {
	return router.ByUrlAndQuery
}

func (r *GalleryHandler) Render(c *fiber.Ctx, supplements *router.Supplements) (statusCode int, payload any, err error) {
	categoryID := supplements.CategoryID
	if value := c.Query("category"); value != "" {
		if categoryID = parseID(value); categoryID <= 0 {
			return fiber.StatusBadRequest, nil, fmt.Errorf("invalid 'category' value: '%s'", value)
		}
	}

	page, err := supplements.Gallery.Home(c.UserContext(), categoryID)
	if err != nil {
		slog.Warn("failed to assemble gallery home", slog.Int64("category", categoryID), slog.String("error", err.Error()))
		return fiber.StatusInternalServerError, nil, fmt.Errorf("failed to assemble gallery for category %d", categoryID)
	}

	return fiber.StatusOK, page, nil
}
