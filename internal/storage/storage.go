package storage

import (
	"context"
	"path/filepath"
	"strings"
)

// FileRef is the durable reference to one stored file, embedded in a note.
// StoredName is the randomized on-disk name and the download lookup key;
// OriginalName is kept only for display and Content-Disposition.
type FileRef struct {
	URL          string `bson:"fileUrl" json:"fileUrl"`
	StoredName   string `bson:"filename" json:"filename"`
	OriginalName string `bson:"originalName" json:"originalName"`
	ProviderID   string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// StagedFile is a file already written to the local staging directory.
type StagedFile struct {
	Path         string
	StoredName   string
	OriginalName string
	Size         int64
}

// Backend stores staged files and yields durable references to them.
type Backend interface {
	Store(ctx context.Context, f StagedFile) (FileRef, error)
	Remove(ctx context.Context, ref FileRef) error
	Name() string
}

// documentExts are uploaded to cloud providers as raw/binary assets.
// Serving a PDF through an image transformation pipeline corrupts it.
var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".txt": true, ".zip": true, ".rar": true,
}

// IsDocument reports whether the filename should be treated as a raw
// document rather than an auto-detected media asset.
func IsDocument(name string) bool {
	return documentExts[strings.ToLower(filepath.Ext(name))]
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
	".7z":   "application/x-7z-compressed",
	".gz":   "application/gzip",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

// ContentTypeByName resolves a MIME type from the filename's extension.
// Unknown extensions fall back to a generic binary type.
func ContentTypeByName(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
