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
	router.Routes = append(router.Routes, &RootHandler{})
}

// RootHandler serves the home view, or the post view when post_id is set.
// An unknown post sends the visitor back to the site.
type RootHandler struct {
	router.BasicHandler
}

func (r *RootHandler) Filter() (method string, path string) {
	return "GET", "/"
}

func (r *RootHandler) ToCache() router.CacheSetting {
	return router.ByUrlAndQuery
}

func (r *RootHandler) Render(c *fiber.Ctx, supplements *router.Supplements) (statusCode int, payload any, err error) {
	postID := parseID(c.Query("post_id"))
	if postID == 0 {
		page, err := supplements.Gallery.Home(c.UserContext(), supplements.CategoryID)
		if err != nil {
			slog.Warn("failed to assemble gallery home", slog.Int64("category", supplements.CategoryID), slog.String("error", err.Error()))
			return fiber.StatusInternalServerError, nil, fmt.Errorf("failed to assemble gallery home")
		}
		return fiber.StatusOK, page, nil
	}

	page, err := supplements.Gallery.Post(c.UserContext(), postID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("redirect from unknown post", slog.Int64("post_id", postID))
		return fiber.StatusFound, nil, c.Redirect(supplements.SiteURL, fiber.StatusFound)
	}
	if err != nil {
		slog.Warn("failed to assemble gallery post", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return fiber.StatusInternalServerError, nil, fmt.Errorf("failed to assemble gallery post")
	}
	return fiber.StatusOK, page, nil
}
