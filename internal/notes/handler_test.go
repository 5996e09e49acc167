package notes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"notesvilla/internal/config"
	"notesvilla/internal/storage"
)

func newDownloadHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewUploader(&config.Config{
		UploadsDir: dir,
		BaseURL:    "http://localhost:5000",
	}, log)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	return NewHandler(nil, nil, store, log), dir
}

func downloadMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes/download/{storedName}", h.Download)
	return mux
}

func TestDownloadServesOriginalFilename(t *testing.T) {
	h, dir := newDownloadHandler(t)
	content := []byte("%PDF-1.4 fake body")
	if err := os.WriteFile(filepath.Join(dir, "files-1700000000000-abcd1234.pdf"), content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/notes/download/files-1700000000000-abcd1234.pdf?name="+url.QueryEscape("My Lecture Notes.pdf"), nil)
	rec := httptest.NewRecorder()
	downloadMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="My Lecture Notes.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", got)
	}
	if rec.Body.String() != string(content) {
		t.Errorf("body mismatch: got %d bytes, want %d", rec.Body.Len(), len(content))
	}
}

func TestDownloadDefaultsToStoredName(t *testing.T) {
	h, dir := newDownloadHandler(t)
	if err := os.WriteFile(filepath.Join(dir, "files-1-aa.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notes/download/files-1-aa.png", nil)
	rec := httptest.NewRecorder()
	downloadMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="files-1-aa.png"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestDownloadMissingFileEchoesRequestedName(t *testing.T) {
	h, _ := newDownloadHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notes/download/files-9-gone.pdf", nil)
	rec := httptest.NewRecorder()
	downloadMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body struct {
		Msg           string `json:"msg"`
		RequestedFile string `json:"requestedFile"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Msg != "File not found" {
		t.Errorf("msg = %q", body.Msg)
	}
	if body.RequestedFile != "files-9-gone.pdf" {
		t.Errorf("requestedFile = %q", body.RequestedFile)
	}
}

func TestDownloadRejectsPathTraversal(t *testing.T) {
	h, dir := newDownloadHandler(t)

	// A file outside the uploads dir must not be reachable.
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { os.Remove(outside) })

	req := httptest.NewRequest(http.MethodGet,
		"/api/notes/download/"+url.PathEscape("../secret.txt"), nil)
	rec := httptest.NewRecorder()
	downloadMux(h).ServeHTTP(rec, req)

	if rec.Code == http.StatusOK && rec.Body.String() == "secret" {
		t.Error("path traversal escaped the uploads directory")
	}
}
