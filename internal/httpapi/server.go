// Package httpapi serves the case operations over a JSON API.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/laudo/internal/app"
	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/llm"
	"github.com/hyperifyio/laudo/internal/ntep"
	"github.com/hyperifyio/laudo/internal/store"
)

// MaxBody bounds request bodies; case texts of long proceedings fit.
const MaxBody = "20M"

// New returns an echo server exposing a.
func New(a *app.App, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.RequestID())
	e.Use(Logger(logger, a.Metrics()))
	e.Use(Recovery(logger))
	e.Use(echomw.BodyLimit(MaxBody))

	h := &handler{app: a}
	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(a.Metrics().Handler()))

	v1 := e.Group("/api/v1")
	v1.GET("/cases", h.listCases)
	v1.POST("/cases", h.createCase)
	v1.DELETE("/cases", h.clearCases)
	v1.GET("/cases/stats", h.stats)
	v1.GET("/cases/:id", h.getCase)
	v1.PUT("/cases/:id", h.updateCase)
	v1.PATCH("/cases/:id", h.updateCase)
	v1.DELETE("/cases/:id", h.deleteCase)
	v1.POST("/cases/:id/extract", h.extractCase)
	v1.GET("/cases/:id/extraction", h.extraction)
	v1.DELETE("/cases/:id/extraction", h.clearExtraction)
	v1.POST("/cases/:id/ntep", h.verifyNTEP)
	v1.POST("/cases/:id/report", h.generateReport)
	v1.GET("/cases/:id/report", h.storedReport)
	v1.POST("/reports/analyze", h.analyzeReport)
	v1.GET("/ai-config", h.aiConfig)
	v1.PUT("/ai-config", h.configureAI)
	v1.POST("/ai-config/test", h.testAI)
	return e
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	var apiErr *llm.APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, extract.ErrEmptyText),
		errors.Is(err, ntep.ErrMissingInput),
		errors.Is(err, llm.ErrUnsupportedProvider):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.As(err, &apiErr), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusOf(err)
	msg := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorBody{Error: msg})
}
