package files

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/platform/auth"
)

func multipartBody(t *testing.T, field, filename, mime string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", mime)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(content)

	w.WriteField("category", "lab_report")
	w.WriteField("description", "blood work")
	w.Close()
	return &buf, w.FormDataContentType()
}

func serveFiles(t *testing.T) (*echo.Echo, *Service, uuid.UUID) {
	t.Helper()
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)

	userID := uuid.New()
	e := echo.New()
	bind := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), &auth.Identity{ID: userID, Username: "alice"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
	g := e.Group("/api/files", bind)
	h.RegisterRoutes(g)
	return e, svc, userID
}

func TestUploadEndpoint(t *testing.T) {
	e, _, _ := serveFiles(t)

	body, ctype := multipartBody(t, "medicalFile", "results.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		File struct {
			Filename string   `json:"filename"`
			Category Category `json:"category"`
		} `json:"file"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.File.Filename != "results.pdf" {
		t.Errorf("filename = %q, want the original name", resp.File.Filename)
	}
	if resp.File.Category != CategoryLabReport {
		t.Errorf("category = %s", resp.File.Category)
	}
}

func TestUploadEndpoint_NoFile(t *testing.T) {
	e, _, _ := serveFiles(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("description", "nothing attached")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUploadEndpoint_DisallowedType(t *testing.T) {
	e, _, _ := serveFiles(t)

	body, ctype := multipartBody(t, "medicalFile", "malware.exe", "application/octet-stream", []byte{0x4d, 0x5a})
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestListEndpoint_OmitsFilePath(t *testing.T) {
	e, svc, userID := serveFiles(t)

	if _, err := svc.Upload(context.Background(), userID, pdfUpload("results.pdf", 16)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "filepath") {
		t.Errorf("listing leaks storage paths: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "results.pdf") {
		t.Errorf("listing missing the file: %s", rec.Body.String())
	}
}

func TestDeleteEndpoint_UnknownID(t *testing.T) {
	e, _, _ := serveFiles(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/files/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: expected 404, got %d", rec.Code)
	}
}

func TestDownloadEndpoint(t *testing.T) {
	e, svc, userID := serveFiles(t)

	f, err := svc.Upload(context.Background(), userID, pdfUpload("results.pdf", 16))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+f.ID.String()+"/download", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "results.pdf") {
		t.Errorf("content-disposition = %q", got)
	}
	if rec.Body.Len() != 16 {
		t.Errorf("body len = %d, want 16", rec.Body.Len())
	}
}

// A failing metadata store must surface as a generic 500, never as the raw
// driver error at a 4xx status.
func TestUploadEndpoint_StoreFailureNotLeaked(t *testing.T) {
	e, svc, _ := serveFiles(t)
	repo := svc.repo.(*mockRepo)
	repo.failErr = errors.New("pq: connection refused host=db-internal-10.0.0.7")

	body, ctype := multipartBody(t, "medicalFile", "results.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "db-internal") {
		t.Errorf("response leaks store error: %s", rec.Body.String())
	}
}
