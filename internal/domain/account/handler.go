package account

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

// RegisterRoutes mounts register/login on the public group and /me on the
// authenticated group.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	protected.GET("/me", h.Me)
}

type loginResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrExists):
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, token, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrBadCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, loginResponse{User: u, AccessToken: token})
}

func (h *Handler) Me(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, ident)
}
