package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workforce-tools/tasq/internal/chat"
)

// ChatHandler exposes the conversational pipeline over HTTP.
type ChatHandler struct {
	Service *chat.Service
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/message", h.message)
	g.GET("/history/:session_id", h.history)
	g.DELETE("/session/:session_id", h.clear)
	g.GET("/suggestions", h.suggestions)
}

func (h *ChatHandler) message(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	resp := h.Service.HandleTurn(c.Request().Context(), req.SessionID, req.Message)
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) history(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id required")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      h.Service.History(sessionID),
	})
}

func (h *ChatHandler) clear(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id required")
	}
	h.Service.ClearSession(sessionID)
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

func (h *ChatHandler) suggestions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": chat.Suggestions})
}
