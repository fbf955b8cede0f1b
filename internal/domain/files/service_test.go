package files

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/platform/filestore"
	"github.com/healthtrack/healthtrack/pkg/pagination"
)

type mockRepo struct {
	store   map[uuid.UUID]*MedicalFile
	failErr error // returned from Create when set
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: map[uuid.UUID]*MedicalFile{}}
}

func (m *mockRepo) Create(_ context.Context, f *MedicalFile) error {
	if m.failErr != nil {
		return m.failErr
	}
	f.ID = uuid.New()
	f.CreatedAt = time.Now().UTC()
	cp := *f
	m.store[f.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, userID, fileID uuid.UUID) (*MedicalFile, error) {
	f, ok := m.store[fileID]
	if !ok || f.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalFile, int, error) {
	all := []*MedicalFile{}
	for _, f := range m.store {
		if f.UserID == userID {
			cp := *f
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Delete(_ context.Context, userID, fileID uuid.UUID) error {
	f, ok := m.store[fileID]
	if !ok || f.UserID != userID {
		return ErrNotFound
	}
	delete(m.store, fileID)
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, filestore.Store) {
	t.Helper()
	store, err := filestore.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	repo := newMockRepo()
	return NewService(repo, store, zerolog.Nop()), repo, store
}

func pdfUpload(name string, size int) UploadInput {
	return UploadInput{
		OriginalName: name,
		MimeType:     "application/pdf",
		Size:         int64(size),
		Content:      bytes.NewReader(bytes.Repeat([]byte{0x25}, size)),
		Description:  "blood work",
	}
}

func TestUpload(t *testing.T) {
	svc, _, _ := newTestService(t)
	userID := uuid.New()

	f, err := svc.Upload(context.Background(), userID, pdfUpload("results.pdf", 128))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.Category != CategoryGeneral {
		t.Errorf("category = %s, want general default", f.Category)
	}
	if f.FileSize != 128 {
		t.Errorf("fileSize = %d, want 128", f.FileSize)
	}
	if !strings.HasPrefix(f.Filename, userID.String()+"-") {
		t.Errorf("stored name %q should be prefixed with the owner id", f.Filename)
	}
	if !strings.HasSuffix(f.Filename, ".pdf") {
		t.Errorf("stored name %q should keep the extension", f.Filename)
	}
}

func TestUpload_RejectsDisallowedTypes(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name string
		mime string
	}{
		{"malware.exe", "application/octet-stream"},
		{"script.sh", "text/x-shellscript"},
		// Extension ok, MIME not: both must pass.
		{"results.pdf", "application/octet-stream"},
		// MIME ok, extension not.
		{"results.exe", "application/pdf"},
	}
	for _, tc := range cases {
		in := pdfUpload(tc.name, 16)
		in.MimeType = tc.mime
		if _, err := svc.Upload(context.Background(), uuid.New(), in); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s (%s): got %v, want ErrUnsupportedType", tc.name, tc.mime, err)
		}
	}
}

func TestUpload_RejectsOversized(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := pdfUpload("big.pdf", 16)
	in.Size = 15 << 20
	if _, err := svc.Upload(context.Background(), uuid.New(), in); !errors.Is(err, ErrTooLarge) {
		t.Errorf("declared oversize: got %v, want ErrTooLarge", err)
	}

	// A lying Content-Length does not get around the cap.
	in = UploadInput{
		OriginalName: "big.pdf",
		MimeType:     "application/pdf",
		Size:         64,
		Content:      bytes.NewReader(make([]byte, MaxFileSize+1)),
	}
	if _, err := svc.Upload(context.Background(), uuid.New(), in); !errors.Is(err, ErrTooLarge) {
		t.Errorf("actual oversize: got %v, want ErrTooLarge", err)
	}
}

func TestUpload_UnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	in := pdfUpload("results.pdf", 16)
	in.Category = "selfies"
	if _, err := svc.Upload(context.Background(), uuid.New(), in); err == nil {
		t.Error("expected category validation error")
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := uuid.New()

	for i, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		f, err := svc.Upload(context.Background(), userID, pdfUpload(name, 16))
		if err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
		// Spread creation times so the ordering is deterministic.
		repo.store[f.ID].CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
	}

	list, total, err := svc.List(context.Background(), userID, pagination.Params{Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("len = %d, total = %d, want 3", len(list), total)
	}
	if list[0].OriginalName != "c.pdf" || list[2].OriginalName != "a.pdf" {
		t.Errorf("not newest first: %s, %s, %s",
			list[0].OriginalName, list[1].OriginalName, list[2].OriginalName)
	}

	page, total, err := svc.List(context.Background(), userID, pagination.Params{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].OriginalName != "a.pdf" {
		t.Errorf("page = %v, total = %d", page, total)
	}
}

func TestDelete(t *testing.T) {
	svc, _, store := newTestService(t)
	userID := uuid.New()

	f, err := svc.Upload(context.Background(), userID, pdfUpload("results.pdf", 16))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), userID, f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(context.Background(), f.FilePath); err == nil {
		t.Error("binary should be gone")
	}
	if err := svc.Delete(context.Background(), userID, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestDelete_ToleratesMissingBinary(t *testing.T) {
	svc, _, store := newTestService(t)
	userID := uuid.New()

	f, err := svc.Upload(context.Background(), userID, pdfUpload("results.pdf", 16))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := store.Remove(context.Background(), f.FilePath); err != nil {
		t.Fatalf("remove binary: %v", err)
	}

	if err := svc.Delete(context.Background(), userID, f.ID); err != nil {
		t.Errorf("delete with missing binary: %v", err)
	}
}

func TestDelete_CrossUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := uuid.New()

	f, err := svc.Upload(context.Background(), owner, pdfUpload("results.pdf", 16))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), uuid.New(), f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user delete: got %v, want ErrNotFound", err)
	}
	// Owner can still see it.
	list, _, _ := svc.List(context.Background(), owner, pagination.Params{Limit: 50})
	if len(list) != 1 {
		t.Errorf("owner's file disappeared")
	}
}

func TestDownload(t *testing.T) {
	svc, _, _ := newTestService(t)
	userID := uuid.New()

	in := UploadInput{
		OriginalName: "scan.png",
		MimeType:     "image/png",
		Size:         4,
		Content:      bytes.NewReader([]byte("data")),
		Category:     CategoryXray,
	}
	f, err := svc.Upload(context.Background(), userID, in)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	meta, rc, err := svc.Download(context.Background(), userID, f.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	if meta.OriginalName != "scan.png" {
		t.Errorf("originalName = %q", meta.OriginalName)
	}

	if _, _, err := svc.Download(context.Background(), uuid.New(), f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user download: got %v, want ErrNotFound", err)
	}
}
