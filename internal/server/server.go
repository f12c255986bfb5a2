package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/cache"
	"github.com/workforce-tools/tasq/internal/charts"
	"github.com/workforce-tools/tasq/internal/chat"
	"github.com/workforce-tools/tasq/internal/conversation"
	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/nlq"
	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
	"github.com/workforce-tools/tasq/provider"
)

// Run wires the whole pipeline together and serves the chat API until the
// process exits.
func Run(addr string, cfg *config.Config) error {
	e := newEcho()

	dsn, err := cfg.Postgres.DSN()
	if err != nil {
		return err
	}
	exec, err := query.NewExecutorWithDSN(context.Background(), dsn)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		if !exec.TestConnection(c.Request().Context()) {
			return c.String(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	resolver, err := provider.NewResolver(provider.Ollama, cfg.Resolver)
	if err != nil {
		return err
	}

	reg := registry.Default()
	store := conversation.NewStore(cfg.Conversation.HistorySize, cfg.Conversation.SessionTimeout)
	svc := chat.NewService(
		cfg.Conversation,
		store,
		nlq.New(reg, resolver),
		exec,
		insights.NewEngine(cfg.Analytics),
		charts.NewProjector(reg),
		cache.New(cfg.Cache),
	)

	h := &ChatHandler{Service: svc}
	h.Register(e.Group("/api/chat"))

	if addr == "" {
		addr = cfg.Server.Address
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the echo instance with the shared middleware stack and a
// unified JSON error handler.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	return e
}
