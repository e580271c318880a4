package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SayaAndy/saya-today-gallery/internal/router"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/gofiber/fiber/v2"
)

func init() {
	router.Routes = append(router.Routes, &GalleryPostHandler{})
}

type GalleryPostHandler struct {
	router.BasicHandler
}

func (r *GalleryPostHandler) Filter() (method string, path string) {
	return "GET", "/api/v1/gallery/:postID"
}

func (r *GalleryPostHandler) ToCache() router.CacheSetting {
	return router.ByUrlOnly
}

func (r *GalleryPostHandler) Render(c *fiber.Ctx, supplements *router.Supplements) (statusCode int, payload any, err error) {
	postID := parseID(c.Params("postID"))
	if postID <= 0 {
		return fiber.StatusBadRequest, nil, fmt.Errorf("invalid post id: '%s'", c.Params("postID"))
	}

	page, err := supplements.Gallery.Post(c.UserContext(), postID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.StatusNotFound, nil, fmt.Errorf("server did not find post %d", postID)
	}
	if err != nil {
		slog.Warn("failed to assemble gallery post", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return fiber.StatusInternalServerError, nil, fmt.Errorf("failed to assemble gallery for post %d", postID)
	}

	return fiber.StatusOK, page, nil
}
