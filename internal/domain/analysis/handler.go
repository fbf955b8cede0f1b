package analysis

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyze", h.Analyze)
	g.POST("/symptoms", h.CheckSymptoms)
}

func (h *Handler) Analyze(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var in AnalyzeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.Analyze(c.Request().Context(), ident.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrProvider):
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to analyze health data")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) CheckSymptoms(c echo.Context) error {
	var in SymptomCheckInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.CheckSymptoms(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrProvider):
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to analyze symptoms")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, res)
}
