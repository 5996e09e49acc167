package notes

import (
	"testing"
	"time"

	"notesvilla/internal/storage"
	"notesvilla/internal/upload"
)

func TestNewNoteMirrorsPrimaryFile(t *testing.T) {
	meta := upload.Metadata{
		Title:       "Thermodynamics",
		SubjectName: "Physics",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	refs := []storage.FileRef{
		{URL: "http://x/uploads/files-1-aa.pdf", StoredName: "files-1-aa.pdf", OriginalName: "lecture.pdf"},
		{URL: "http://x/uploads/files-2-bb.png", StoredName: "files-2-bb.png", OriginalName: "diagram.png"},
		{URL: "http://x/uploads/files-3-cc.txt", StoredName: "files-3-cc.txt", OriginalName: "summary.txt"},
	}

	n := NewNote(meta, refs, "admin")

	if len(n.Files) != 3 {
		t.Fatalf("note has %d files, want 3", len(n.Files))
	}
	if n.FileURL != refs[0].URL {
		t.Errorf("FileURL = %q, want first file's URL %q", n.FileURL, refs[0].URL)
	}
	if n.Filename != refs[0].OriginalName {
		t.Errorf("Filename = %q, want first file's original name %q", n.Filename, refs[0].OriginalName)
	}
	if n.UploadedBy != "admin" {
		t.Errorf("UploadedBy = %q", n.UploadedBy)
	}
}

func TestNewNoteWithoutFiles(t *testing.T) {
	n := NewNote(upload.Metadata{Title: "t"}, nil, "admin")
	if n.FileURL != "" || n.Filename != "" {
		t.Errorf("mirror fields set without files: %q %q", n.FileURL, n.Filename)
	}
}

func TestPaginate(t *testing.T) {
	found := []*Note{{Title: "a"}, {Title: "b"}}

	list := paginate(found, 45, 2, 20)

	p := list.Pagination
	if p.CurrentPage != 2 || p.TotalPages != 3 || p.TotalNotes != 45 {
		t.Errorf("pagination = %+v", p)
	}
	if !p.HasNextPage || !p.HasPrevPage {
		t.Errorf("page 2 of 3 should have both neighbors: %+v", p)
	}
}

func TestPaginateClampsAndDefaults(t *testing.T) {
	list := paginate(nil, 0, 0, 500)

	p := list.Pagination
	if p.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", p.CurrentPage)
	}
	if p.Limit != 100 {
		t.Errorf("Limit = %d, want clamped to 100", p.Limit)
	}
	if p.HasNextPage || p.HasPrevPage {
		t.Errorf("empty result should have no neighbors: %+v", p)
	}
	if list.Notes == nil {
		t.Error("Notes is nil, want empty slice for JSON encoding")
	}
}

func TestEmptyList(t *testing.T) {
	list := EmptyList()
	if list.Notes == nil || len(list.Notes) != 0 {
		t.Errorf("Notes = %v, want empty non-nil slice", list.Notes)
	}
	if list.Pagination.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", list.Pagination.CurrentPage)
	}
}
