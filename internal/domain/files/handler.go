package files

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/platform/auth"
	"github.com/healthtrack/healthtrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload)
	g.GET("", h.List)
	g.GET("/:fileId/download", h.Download)
	g.DELETE("/:fileId", h.Delete)
}

// uploadedFile is the trimmed view returned right after an upload.
type uploadedFile struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Category   Category  `json:"category"`
	UploadDate time.Time `json:"uploadDate"`
}

func (h *Handler) Upload(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	fh, err := c.FormFile("medicalFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	f, err := h.svc.Upload(c.Request().Context(), ident.ID, UploadInput{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Content:      src,
		Category:     Category(c.FormValue("category")),
		Description:  c.FormValue("description"),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, ErrUnsupportedType.Error())
		case errors.Is(err, ErrTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, ErrTooLarge.Error())
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "medical file uploaded successfully",
		"file": uploadedFile{
			ID:         f.ID,
			Filename:   f.OriginalName,
			Category:   f.Category,
			UploadDate: f.CreatedAt,
		},
	})
}

func (h *Handler) List(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	page := pagination.FromContext(c)
	list, total, err := h.svc.List(c.Request().Context(), ident.ID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "medical files retrieved successfully",
		"files":   list,
		"total":   total,
		"hasMore": page.HasNext(total),
	})
}

func (h *Handler) Download(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}

	f, rc, err := h.svc.Download(c.Request().Context(), ident.ID, fileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+f.OriginalName+`"`)
	return c.Stream(http.StatusOK, f.MimeType, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	ident := auth.CurrentUser(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}

	if err := h.svc.Delete(c.Request().Context(), ident.ID, fileID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "medical file deleted successfully"})
}
