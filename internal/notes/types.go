package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notesvilla/internal/storage"
)

// Note is the persisted unit of content: user-facing metadata plus the
// ordered list of stored files. The legacy fileUrl/filename pair mirrors
// files[0] for clients that predate multi-file notes.
type Note struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	SubjectName string             `bson:"subjectName" json:"subjectName"`
	Date        time.Time          `bson:"date" json:"date"`
	Files       []storage.FileRef  `bson:"files" json:"files"`
	FileURL     string             `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	Filename    string             `bson:"filename,omitempty" json:"filename,omitempty"`
	UploadedBy  string             `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Subject is a free-text category derived from existing notes.
type Subject struct {
	Name string `json:"name"`
}

// ListQuery represents list parameters
type ListQuery struct {
	Subject string
	Page    int
	Limit   int
}

// SearchQuery represents full-text search parameters
type SearchQuery struct {
	Query   string
	Subject string
	Page    int
	Limit   int
}

// UpdateInput is the metadata-only edit payload. Nil fields are left
// untouched; the files list is never modified through updates.
type UpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	SubjectName *string    `json:"subjectName"`
	Date        *time.Time `json:"date"`
}

// Pagination mirrors the envelope the listing endpoints return.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalNotes  int64 `json:"totalNotes"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

// NoteList is a page of notes plus its pagination envelope.
type NoteList struct {
	Notes      []*Note    `json:"notes"`
	Pagination Pagination `json:"pagination"`
}
