package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local serves files straight out of the staging directory; the durable
// URL is {baseURL}/uploads/{storedName}.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Store(ctx context.Context, f StagedFile) (FileRef, error) {
	// Staging dir and serving dir are the same; the file is already in place.
	return FileRef{
		URL:          l.baseURL + "/uploads/" + f.StoredName,
		StoredName:   f.StoredName,
		OriginalName: f.OriginalName,
	}, nil
}

func (l *Local) Remove(ctx context.Context, ref FileRef) error {
	err := os.Remove(l.Path(ref.StoredName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local file %s: %w", ref.StoredName, err)
	}
	return nil
}

// Path resolves a stored name inside the uploads directory. The base is
// stripped so a crafted name cannot escape the directory.
func (l *Local) Path(storedName string) string {
	return filepath.Join(l.dir, filepath.Base(storedName))
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Name() string { return "local" }
