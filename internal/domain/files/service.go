package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/platform/filestore"
	"github.com/healthtrack/healthtrack/pkg/pagination"
)

// MaxFileSize caps uploads at 10 MiB.
const MaxFileSize = 10 << 20

var (
	// ErrUnsupportedType means the extension or declared MIME type is not
	// on the allow-list.
	ErrUnsupportedType = errors.New("only images, PDFs, and documents are allowed")
	// ErrTooLarge means the upload exceeds MaxFileSize.
	ErrTooLarge = errors.New("file exceeds the size limit")
	// ErrInvalid marks rejected caller input. Handlers map it to 400.
	ErrInvalid = errors.New("invalid input")
)

var allowedExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true,
	".pdf": true, ".doc": true, ".docx": true,
}

func allowedMime(mime string) bool {
	switch mime {
	case "image/jpeg", "image/jpg", "image/png", "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	}
	return false
}

type UploadInput struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
	Category     Category
	Description  string
}

type Service struct {
	repo   Repository
	store  filestore.Store
	logger zerolog.Logger
}

func NewService(repo Repository, store filestore.Store, logger zerolog.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

// Upload validates the file, writes the binary and records the metadata.
// Both the extension and the declared MIME type must be on the allow-list.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*MedicalFile, error) {
	ext := strings.ToLower(filepath.Ext(in.OriginalName))
	if !allowedExts[ext] || !allowedMime(strings.ToLower(in.MimeType)) {
		return nil, ErrUnsupportedType
	}
	if in.Size > MaxFileSize {
		return nil, ErrTooLarge
	}

	category := in.Category
	if category == "" {
		category = CategoryGeneral
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalid, category)
	}

	storedName := fmt.Sprintf("%s-%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	// The declared size is client input; the limit holds against the
	// actual stream too.
	path, written, err := s.store.Save(ctx, storedName, io.LimitReader(in.Content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	if written > MaxFileSize {
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", path).Msg("failed to remove oversized upload")
		}
		return nil, ErrTooLarge
	}

	f := &MedicalFile{
		UserID:       userID,
		Filename:     storedName,
		OriginalName: in.OriginalName,
		FilePath:     path,
		Category:     category,
		Description:  in.Description,
		FileSize:     written,
		MimeType:     in.MimeType,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", path).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	return f, nil
}

// List returns one page of the caller's files, newest first, plus the total
// count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*MedicalFile, int, error) {
	return s.repo.ListByUser(ctx, userID, page.Limit, page.Offset)
}

// Download returns the metadata and an open reader over the binary. The
// caller closes the reader.
func (s *Service) Download(ctx context.Context, userID, fileID uuid.UUID) (*MedicalFile, io.ReadCloser, error) {
	f, err := s.repo.GetByID(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, rc, nil
}

// Delete removes the binary first, then the record. A binary that is already
// gone is tolerated; any other removal failure is logged and the record is
// deleted anyway.
func (s *Service) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	f, err := s.repo.GetByID(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, f.FilePath); err != nil {
		s.logger.Warn().Err(err).
			Str("file_id", fileID.String()).
			Str("path", f.FilePath).
			Msg("failed to remove stored binary")
	}
	return s.repo.Delete(ctx, userID, fileID)
}
