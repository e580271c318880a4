package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SayaAndy/saya-today-gallery/config"
	"github.com/SayaAndy/saya-today-gallery/internal/gallery"
	"github.com/SayaAndy/saya-today-gallery/internal/metrics"
	"github.com/SayaAndy/saya-today-gallery/internal/refresher"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
)

type CacheSetting int

const (
	Disabled CacheSetting = iota
	ByUrlOnly
	ByUrlAndQuery
)

var (
	Routes = make([]Route, 0)
)

// Route is a JSON endpoint. Render returns the payload to encode; a nil
// payload with a nil error means the handler already wrote the response.
type Route interface {
	Filter() (method string, path string)
	ToCache() CacheSetting
	CacheDuration() time.Duration
	Render(c *fiber.Ctx, supplements *Supplements) (statusCode int, payload any, err error)
}

type Supplements struct {
	Store         store.Store
	Gallery       *gallery.Service
	PageCache     *ristretto.Cache[string, []byte]
	Refresher     *refresher.RefreshScheduler
	Recorder      metrics.Recorder
	CategoryID    int64
	SiteURL       string
	CacheDuration time.Duration
}

type Router struct {
	supplements *Supplements
	app         *fiber.App
	registry    *prometheus.Registry
	metricsPath string
}

func NewRouter(cfg *config.Config, st store.Store) (*Router, error) {
	supplements := &Supplements{
		Store:         st,
		Recorder:      metrics.NoopRecorder{},
		CategoryID:    cfg.Gallery.CategoryID,
		SiteURL:       cfg.Gallery.SiteURL,
		CacheDuration: cfg.Gallery.CacheDuration,
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		supplements.Recorder = metrics.NewPrometheusRecorder(registry)
	}

	supplements.Gallery = gallery.NewService(st, cfg.Gallery.Placeholder, cfg.Gallery.SiteTitle, supplements.Recorder)

	var err error
	supplements.PageCache, err = ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,     // 100,000
		MaxCost:     1 << 26, // 64 MB
		BufferItems: 64,      // number of keys per Get buffer.
	})
	if err != nil {
		return nil, fmt.Errorf("fail to initialize page cache: %w", err)
	}

	supplements.Refresher, err = refresher.NewRefreshScheduler(st, cfg.Gallery.CategoryID, cfg.Gallery.RefreshCron, supplements.Recorder,
		func() {
			supplements.PageCache.Clear()
		})
	if err != nil {
		supplements.PageCache.Close()
		return nil, fmt.Errorf("fail to initialize refresher: %w", err)
	}

	enablePrintRoutes := false
	if cfg.LogLevel <= slog.LevelDebug {
		enablePrintRoutes = true
	}

	app := fiber.New(fiber.Config{
		EnablePrintRoutes:     enablePrintRoutes,
		DisableStartupMessage: !enablePrintRoutes,
		ProxyHeader:           "X-Forwarded-For",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	return &Router{supplements: supplements, app: app, registry: registry, metricsPath: cfg.Metrics.Path}, nil
}

func (r *Router) InitRoutes() error {
	for _, route := range Routes {
		method, match := route.Filter()
		if method == "" || match == "" {
			return fmt.Errorf("route %T has an empty filter", route)
		}

		currentRoute := route
		r.app.Add(method, match, func(c *fiber.Ctx) error {
			return r.serve(c, currentRoute)
		})
	}

	if r.registry != nil {
		r.app.Get(r.metricsPath, adaptor.HTTPHandler(metrics.HTTPHandler(r.registry)))
	}

	return nil
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Supplements() *Supplements {
	return r.supplements
}

func (r *Router) Listen(endpoint string) error {
	if err := r.app.Listen(endpoint); err != nil {
		return fmt.Errorf("error while running fiber server: %w", err)
	}
	return nil
}

func (r *Router) Close() (err error) {
	allErrors := make([]error, 0)
	if err = r.supplements.Refresher.Close(); err != nil {
		allErrors = append(allErrors, fmt.Errorf("fail to shutdown refresh scheduler: %w", err))
	}
	if err = r.app.Shutdown(); err != nil {
		allErrors = append(allErrors, fmt.Errorf("fail to shutdown fiber server: %w", err))
	}
	if err = r.supplements.Store.Close(); err != nil {
		allErrors = append(allErrors, fmt.Errorf("fail to close store: %w", err))
	}
	r.supplements.PageCache.Close()
	return errors.Join(allErrors...)
}

func (r *Router) serve(c *fiber.Ctx, route Route) error {
	method, match := route.Filter()
	trimmedPath := strings.Trim(c.Path(), "/")
	queryString := string(c.Request().URI().QueryString())

	var cacheKey string
	switch route.ToCache() {
	case ByUrlOnly:
		cacheKey = fmt.Sprintf("%s.%s", method, trimmedPath)
	case ByUrlAndQuery:
		cacheKey = fmt.Sprintf("%s.%s.%s", method, trimmedPath, queryString)
	}

	if route.ToCache() != Disabled {
		val, ok := r.supplements.PageCache.Get(cacheKey)
		r.supplements.Recorder.IncCache(ok && val != nil)
		if ok && val != nil {
			slog.Debug("served page from cache", slog.String("key", cacheKey))
			r.supplements.Recorder.IncRequest(match, fiber.StatusOK)
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Status(fiber.StatusOK).Send(val)
		}
	}

	statusCode, payload, err := route.Render(c, r.supplements)
	r.supplements.Recorder.IncRequest(match, statusCode)
	if err != nil {
		slog.Error("failed to finish rendering a page",
			slog.Int("status_code", statusCode),
			slog.String("method", method),
			slog.String("path", c.Path()),
			slog.String("match", match),
			slog.String("query", queryString),
			slog.String("error", err.Error()),
		)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(statusCode).SendString(err.Error())
	}
	if payload == nil {
		return nil
	}

	content, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode page",
			slog.String("method", method),
			slog.String("path", c.Path()),
			slog.String("match", match),
			slog.String("error", err.Error()),
		)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to encode page")
	}

	if statusCode >= 200 && statusCode < 300 && route.ToCache() != Disabled {
		ttl := route.CacheDuration()
		if ttl == 0 {
			ttl = r.supplements.CacheDuration
		}
		r.supplements.PageCache.SetWithTTL(cacheKey, content, int64(len(content)), ttl)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(statusCode).Send(content)
}
