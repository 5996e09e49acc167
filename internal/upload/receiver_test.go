package upload

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReceiver(t *testing.T, maxFileSize int64, maxFiles int) (*Receiver, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rc, err := NewReceiver(dir, maxFileSize, maxFiles, log)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	return rc, dir
}

type part struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, field string, parts []part, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(field, p.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(p.content)
	}
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/notes/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"title":       "Diagram",
		"subjectName": "Physics",
		"date":        "2024-01-01",
	}
}

func stagedCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestParseNoFiles(t *testing.T) {
	rc, _ := newTestReceiver(t, 1<<20, 10)
	req := multipartRequest(t, "files", nil, validFields())

	_, _, err := rc.Parse(req, "files")
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestParseMissingFieldsAreNamed(t *testing.T) {
	rc, dir := newTestReceiver(t, 1<<20, 10)
	req := multipartRequest(t, "files",
		[]part{{"notes.pdf", []byte("pdf bytes")}},
		map[string]string{"subjectName": "Physics"})

	_, _, err := rc.Parse(req, "files")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	missing := strings.Join(vErr.Missing, ",")
	if !strings.Contains(missing, "title") || !strings.Contains(missing, "date") {
		t.Errorf("missing fields = %v, want title and date", vErr.Missing)
	}
	if strings.Contains(missing, "subjectName") {
		t.Errorf("subjectName reported missing though it was provided")
	}
	if n := stagedCount(t, dir); n != 0 {
		t.Errorf("%d files staged after validation failure, want 0", n)
	}
}

func TestParseRejectsOversizedFile(t *testing.T) {
	rc, dir := newTestReceiver(t, 1024, 10)
	req := multipartRequest(t, "files", []part{
		{"small.pdf", []byte("ok")},
		{"big.pdf", bytes.Repeat([]byte("x"), 2048)},
		{"also-small.png", []byte("ok")},
	}, validFields())

	_, _, err := rc.Parse(req, "files")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Msg, "big.pdf") {
		t.Errorf("error %q does not name the offending file", vErr.Msg)
	}
	// All-or-nothing: the valid files in the batch must not be staged either.
	if n := stagedCount(t, dir); n != 0 {
		t.Errorf("%d files staged after batch rejection, want 0", n)
	}
}

func TestParseRejectsDisallowedType(t *testing.T) {
	rc, dir := newTestReceiver(t, 1<<20, 10)
	req := multipartRequest(t, "files",
		[]part{{"malware.exe", []byte("MZ")}}, validFields())

	_, _, err := rc.Parse(req, "files")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Msg, ".exe") {
		t.Errorf("error %q does not name the rejected type", vErr.Msg)
	}
	if n := stagedCount(t, dir); n != 0 {
		t.Errorf("%d files staged, want 0", n)
	}
}

func TestParseRejectsTooManyFiles(t *testing.T) {
	rc, _ := newTestReceiver(t, 1<<20, 2)
	req := multipartRequest(t, "files", []part{
		{"a.pdf", []byte("a")},
		{"b.pdf", []byte("b")},
		{"c.pdf", []byte("c")},
	}, validFields())

	_, _, err := rc.Parse(req, "files")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseStagesFiles(t *testing.T) {
	rc, dir := newTestReceiver(t, 1<<20, 10)
	req := multipartRequest(t, "files", []part{
		{"lecture one.pdf", []byte("pdf bytes")},
		{"diagram.png", []byte("png bytes")},
	}, validFields())

	meta, staged, err := rc.Parse(req, "files")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if meta.Title != "Diagram" || meta.SubjectName != "Physics" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Date.Year() != 2024 {
		t.Errorf("date = %v, want 2024-01-01", meta.Date)
	}
	if len(staged) != 2 {
		t.Fatalf("staged %d files, want 2", len(staged))
	}

	for _, f := range staged {
		if !strings.HasPrefix(f.StoredName, "files-") {
			t.Errorf("storedName %q lacks field prefix", f.StoredName)
		}
		if f.StoredName == f.OriginalName {
			t.Errorf("storedName %q must not be the user-supplied name", f.StoredName)
		}
		if _, err := os.Stat(filepath.Join(dir, f.StoredName)); err != nil {
			t.Errorf("staged file %s not on disk: %v", f.StoredName, err)
		}
	}
	if filepath.Ext(staged[0].StoredName) != ".pdf" {
		t.Errorf("storedName %q lost its extension", staged[0].StoredName)
	}
	if staged[0].OriginalName != "lecture one.pdf" {
		t.Errorf("originalName = %q", staged[0].OriginalName)
	}
}

func TestParseIdenticalUploadsGetDistinctNames(t *testing.T) {
	rc, _ := newTestReceiver(t, 1<<20, 10)

	var names []string
	for i := 0; i < 2; i++ {
		req := multipartRequest(t, "file",
			[]part{{"notes.pdf", []byte("same content")}}, validFields())
		_, staged, err := rc.Parse(req, "file")
		if err != nil {
			t.Fatalf("Parse #%d: %v", i, err)
		}
		names = append(names, staged[0].StoredName)
	}

	if names[0] == names[1] {
		t.Errorf("identical uploads produced the same storedName %q", names[0])
	}
}
