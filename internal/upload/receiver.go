package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"notesvilla/internal/storage"
)

var ErrNoFiles = errors.New("no files uploaded")

// ValidationError names exactly which required fields were missing or
// which constraint a file violated. Handlers map it to a 400.
type ValidationError struct {
	Msg     string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Missing, ", "))
	}
	return e.Msg
}

// Metadata is the validated note metadata carried alongside uploads.
type Metadata struct {
	Title       string
	Description string
	SubjectName string
	Date        time.Time
}

// allowedExts is the upload allowlist: images, pdf, office documents,
// text, archives, audio and video.
var allowedExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".svg": true,
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true,
	".txt": true, ".md": true, ".csv": true,
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".webm": true,
}

// Receiver accepts multipart upload requests, validates them, and stages
// accepted files into the uploads directory under randomized names.
type Receiver struct {
	dir         string
	maxFileSize int64
	maxFiles    int
	log         *slog.Logger
}

func NewReceiver(dir string, maxFileSize int64, maxFiles int, log *slog.Logger) (*Receiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Receiver{dir: dir, maxFileSize: maxFileSize, maxFiles: maxFiles, log: log}, nil
}

// Parse validates a multipart request carrying files under the given field
// name plus note metadata, and stages each accepted file. Validation order:
// file presence, then required metadata, then per-file size and type; the
// whole batch is rejected if any file violates a constraint, and nothing
// is staged on a validation failure.
func (rc *Receiver) Parse(r *http.Request, field string) (Metadata, []storage.StagedFile, error) {
	// Files above maxMemory spill to multipart temp files, not RAM.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return Metadata{}, nil, &ValidationError{Msg: "invalid multipart form"}
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}
	if len(headers) == 0 {
		return Metadata{}, nil, ErrNoFiles
	}
	if len(headers) > rc.maxFiles {
		return Metadata{}, nil, &ValidationError{
			Msg: fmt.Sprintf("too many files: at most %d allowed", rc.maxFiles),
		}
	}

	meta, err := rc.parseMetadata(r)
	if err != nil {
		return Metadata{}, nil, err
	}

	for _, fh := range headers {
		if err := rc.validateFile(fh); err != nil {
			return Metadata{}, nil, err
		}
	}

	staged := make([]storage.StagedFile, 0, len(headers))
	for _, fh := range headers {
		sf, err := rc.stage(fh, field)
		if err != nil {
			rc.cleanup(staged)
			return Metadata{}, nil, err
		}
		staged = append(staged, sf)
	}
	return meta, staged, nil
}

func (rc *Receiver) parseMetadata(r *http.Request) (Metadata, error) {
	title := strings.TrimSpace(r.FormValue("title"))
	subjectName := strings.TrimSpace(r.FormValue("subjectName"))
	dateStr := strings.TrimSpace(r.FormValue("date"))

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if subjectName == "" {
		missing = append(missing, "subjectName")
	}
	if dateStr == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return Metadata{}, &ValidationError{Msg: "Missing required fields", Missing: missing}
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return Metadata{}, &ValidationError{Msg: "invalid date format", Missing: []string{"date"}}
	}

	return Metadata{
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		SubjectName: subjectName,
		Date:        date,
	}, nil
}

func (rc *Receiver) validateFile(fh *multipart.FileHeader) error {
	if fh.Size > rc.maxFileSize {
		return &ValidationError{
			Msg: fmt.Sprintf("file %q exceeds the %dMB size limit",
				fh.Filename, rc.maxFileSize/(1024*1024)),
		}
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return &ValidationError{
			Msg: fmt.Sprintf("file type %q is not allowed", ext),
		}
	}
	return nil
}

// stage writes one part to the staging directory. The on-disk name is
// {field}-{unixMillis}-{randomSuffix}{ext}; the user-supplied filename is
// never used as a path component.
func (rc *Receiver) stage(fh *multipart.FileHeader, field string) (storage.StagedFile, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	storedName := fmt.Sprintf("%s-%d-%s%s",
		field, time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	src, err := fh.Open()
	if err != nil {
		return storage.StagedFile{}, fmt.Errorf("open uploaded file %q: %w", fh.Filename, err)
	}
	defer src.Close()

	path := filepath.Join(rc.dir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return storage.StagedFile{}, fmt.Errorf("stage file %s: %w", storedName, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return storage.StagedFile{}, fmt.Errorf("write staged file %s: %w", storedName, err)
	}

	return storage.StagedFile{
		Path:         path,
		StoredName:   storedName,
		OriginalName: fh.Filename,
		Size:         fh.Size,
	}, nil
}

func (rc *Receiver) cleanup(staged []storage.StagedFile) {
	for _, f := range staged {
		if err := os.Remove(f.Path); err != nil {
			rc.log.Warn("failed to clean up staged file", "path", f.Path, "error", err)
		}
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
