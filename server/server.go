package server

import (
	"context"
	"time"

	"blogfeed/feeds"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// RSSContentType is sent with every feed response
const RSSContentType = "application/rss+xml; charset=utf-8"

// FeedBuilder produces a fresh feed on every call
type FeedBuilder interface {
	BuildFeed(ctx context.Context) (*feeds.Feed, error)
}

type ServerConfig struct {
	// Builder assembles the feed for each request
	Builder FeedBuilder

	// FeedPath is the canonical feed route, FeedPath + ".xml" is served as an alias
	FeedPath string

	// Registry collects the server metrics, a fresh registry is used when nil
	Registry *prometheus.Registry
}

// Returns a fiber.App instance to be used as an HTTP server for the blog feed
func Server(config *ServerConfig) *fiber.App {
	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := newMetrics(registry)

	feedPath := config.FeedPath
	if feedPath == "" {
		feedPath = "/feed"
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(requestid.New(requestid.ConfigDefault))

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":     c.Method(),
			"route":      c.Route().Path,
			"status":     c.Response().StatusCode(),
			"request_id": c.Locals("requestid"),
			"latency":    time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handler := feedHandler(config.Builder, m)
	app.Get(feedPath, handler)
	app.Get(feedPath+".xml", handler)

	registerRedirects(app)

	return app
}

func feedHandler(builder FeedBuilder, m *metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		var doc string
		feed, err := builder.BuildFeed(c.UserContext())
		if err == nil {
			doc, err = feed.Render()
		}
		m.duration.Observe(time.Since(start).Seconds())

		if err != nil {
			m.builds.WithLabelValues("error").Inc()
			log.WithFields(log.Fields{
				"request_id": c.Locals("requestid"),
				"error":      err,
			}).Error("Failed to build feed")
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to build feed")
		}

		m.builds.WithLabelValues("ok").Inc()
		m.entries.Set(float64(len(feed.Entries)))

		c.Set(fiber.HeaderContentType, RSSContentType)
		return c.Status(fiber.StatusOK).SendString(doc)
	}
}
