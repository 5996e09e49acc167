package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notesvilla/internal/storage"
	"notesvilla/internal/upload"
)

var ErrInvalidID = errors.New("invalid note ID")

// Service builds, persists and mutates note records. It owns the
// legacy-mirror invariant and the file-cleanup-on-delete contract.
type Service struct {
	repo  *Repo
	store *storage.Uploader
	md    goldmark.Markdown
	log   *slog.Logger
}

func NewService(repo *Repo, store *storage.Uploader, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		store: store,
		md:    goldmark.New(),
		log:   log,
	}
}

// NewNote assembles a note from validated metadata and stored file
// references. The first file is mirrored into the legacy singular fields;
// a note is never built without at least one file.
func NewNote(meta upload.Metadata, refs []storage.FileRef, uploadedBy string) *Note {
	n := &Note{
		Title:       meta.Title,
		Description: meta.Description,
		SubjectName: meta.SubjectName,
		Date:        meta.Date,
		Files:       refs,
		UploadedBy:  uploadedBy,
	}
	if len(refs) > 0 {
		n.FileURL = refs[0].URL
		n.Filename = refs[0].OriginalName
	}
	return n
}

// Create persists a note built from an upload. Resubmitting the same
// upload creates a second note under fresh stored names; there is no
// content-hash deduplication.
func (s *Service) Create(ctx context.Context, meta upload.Metadata, refs []storage.FileRef, uploadedBy string) (*Note, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("note requires at least one file")
	}

	note := NewNote(meta, refs, uploadedBy)
	if err := s.repo.Insert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// GetByID retrieves a note by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return s.repo.FindByID(ctx, oid)
}

// List retrieves a page of notes with optional subject filter
func (s *Service) List(ctx context.Context, q ListQuery) (*NoteList, error) {
	found, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return paginate(found, total, q.Page, q.Limit), nil
}

// Search performs full-text search over titles and descriptions
func (s *Service) Search(ctx context.Context, q SearchQuery) (*NoteList, error) {
	found, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return paginate(found, total, q.Page, q.Limit), nil
}

// Subjects returns all distinct subjects
func (s *Service) Subjects(ctx context.Context) ([]*Subject, error) {
	return s.repo.Subjects(ctx)
}

// Update applies a metadata-only patch; the files list is never modified.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	set := bson.M{}
	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.SubjectName != nil {
		set["subjectName"] = *input.SubjectName
	}
	if input.Date != nil {
		set["date"] = *input.Date
	}
	return s.repo.Update(ctx, oid, set)
}

// Delete removes the note document and every stored copy of its files.
// File removal failures are logged, not surfaced: the document is already
// gone and a retry cannot bring it back.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	note, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	for _, ref := range note.Files {
		if err := s.store.Remove(ctx, ref); err != nil {
			s.log.Warn("failed to remove stored file for deleted note",
				"note", id, "file", ref.StoredName, "error", err)
		}
	}
	return nil
}

// RenderMarkdown converts a markdown description to HTML
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content // Return raw content on error
	}
	return buf.String()
}

func paginate(found []*Note, total int64, page, limit int) *NoteList {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if found == nil {
		found = []*Note{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &NoteList{
		Notes: found,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalNotes:  total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
			Limit:       limit,
		},
	}
}

// EmptyList is what listing endpoints degrade to when the database is
// unreachable, so the public UI never hard-crashes on a transient outage.
func EmptyList() *NoteList {
	return &NoteList{
		Notes: []*Note{},
		Pagination: Pagination{
			CurrentPage: 1,
		},
	}
}
