package profile

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
	g.POST("/profile", h.Create)
	g.GET("/profile", h.Get)
	g.PUT("/profile", h.Update)
}

type profileResponse struct {
	Message       string         `json:"message"`
	HealthProfile *HealthProfile `json:"healthProfile"`
}

func (h *Handler) Create(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Create(c.Request().Context(), ident.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrExists):
			return echo.NewHTTPError(http.StatusBadRequest, "health profile already exists, use update instead")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusCreated, profileResponse{
		Message:       "health profile created successfully",
		HealthProfile: p,
	})
}

func (h *Handler) Get(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	p, err := h.svc.Get(c.Request().Context(), ident.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "health profile not found, please create one first")
		}
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{
		Message:       "health profile retrieved successfully",
		HealthProfile: p,
	})
}

func (h *Handler) Update(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Update(c.Request().Context(), ident.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "health profile not found, please create one first")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, profileResponse{
		Message:       "health profile updated successfully",
		HealthProfile: p,
	})
}
