package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"notesvilla/internal/auth"
	"notesvilla/internal/storage"
	"notesvilla/internal/upload"
)

type Handler struct {
	svc   *Service
	recv  *upload.Receiver
	store *storage.Uploader
	log   *slog.Logger
}

func NewHandler(svc *Service, recv *upload.Receiver, store *storage.Uploader, log *slog.Logger) *Handler {
	return &Handler{svc: svc, recv: recv, store: store, log: log}
}

// --- Upload handlers ---

// Upload handles POST /api/notes/upload (multipart, field "files", admin only)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	meta, staged, err := h.recv.Parse(r, "files")
	if err != nil {
		h.uploadError(w, err)
		return
	}

	refs := h.store.StoreBatch(r.Context(), staged)
	note, err := h.svc.Create(r.Context(), meta, refs, auth.AdminFromContext(r.Context()))
	if err != nil {
		h.log.Error("failed to create note", "error", err)
		h.jsonError(w, "failed to save note", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]any{
		"note":          note,
		"message":       fmt.Sprintf("Note uploaded successfully with %d file(s)!", len(refs)),
		"filesUploaded": len(refs),
	}, http.StatusOK)
}

// UploadSingle handles POST /api/notes/upload-single (multipart, field "file")
func (h *Handler) UploadSingle(w http.ResponseWriter, r *http.Request) {
	meta, staged, err := h.recv.Parse(r, "file")
	if err != nil {
		h.uploadError(w, err)
		return
	}

	refs := h.store.StoreBatch(r.Context(), staged)
	note, err := h.svc.Create(r.Context(), meta, refs, auth.AdminFromContext(r.Context()))
	if err != nil {
		h.log.Error("failed to create note", "error", err)
		h.jsonError(w, "failed to save note", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]any{
		"note":    note,
		"message": "Note uploaded and saved to database successfully!",
	}, http.StatusOK)
}

func (h *Handler) uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, upload.ErrNoFiles) {
		h.jsonResponse(w, map[string]any{"msg": "No files uploaded"}, http.StatusBadRequest)
		return
	}
	var vErr *upload.ValidationError
	if errors.As(err, &vErr) {
		body := map[string]any{"msg": vErr.Msg}
		if len(vErr.Missing) > 0 {
			body["missing"] = vErr.Missing
		}
		h.jsonResponse(w, body, http.StatusBadRequest)
		return
	}
	h.log.Error("upload failed", "error", err)
	h.jsonError(w, "upload failed", http.StatusInternalServerError)
}

// --- Download handler ---

// Download handles GET /api/notes/download/{storedName}?name=displayName.
// The file is looked up by its randomized on-disk name but served under
// the caller-requested display name, so browsers save the original
// filename instead of the random one.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	storedName := r.PathValue("storedName")
	displayName := r.URL.Query().Get("name")
	if displayName == "" {
		displayName = storedName
	}

	path := h.store.Local().Path(storedName)
	f, err := os.Open(path)
	if err != nil {
		h.jsonResponse(w, map[string]any{
			"msg":           "File not found",
			"requestedFile": storedName,
		}, http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.log.Error("failed to stat file", "file", storedName, "error", err)
		h.jsonError(w, "error reading file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeByName(displayName))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", displayName))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	if _, err := io.Copy(w, f); err != nil {
		h.log.Warn("download interrupted", "file", storedName, "error", err)
	}
}

// --- Read handlers ---

// List handles GET /api/notes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Page:  h.parseInt(r.URL.Query().Get("page"), 1),
		Limit: h.parseInt(r.URL.Query().Get("limit"), 20),
	}

	list, err := h.svc.List(r.Context(), q)
	if err != nil {
		// Degrade to an empty page so the public UI survives DB outages.
		h.log.Error("failed to list notes", "error", err)
		h.jsonResponse(w, EmptyList(), http.StatusOK)
		return
	}
	h.jsonResponse(w, list, http.StatusOK)
}

// BySubject handles GET /api/notes/subject/{subjectName}
func (h *Handler) BySubject(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Subject: r.PathValue("subjectName"),
		Page:    h.parseInt(r.URL.Query().Get("page"), 1),
		Limit:   h.parseInt(r.URL.Query().Get("limit"), 20),
	}

	list, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.log.Error("failed to list notes by subject", "subject", q.Subject, "error", err)
		h.jsonResponse(w, EmptyList(), http.StatusOK)
		return
	}
	h.jsonResponse(w, list, http.StatusOK)
}

// Search handles GET /api/notes/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{
		Query:   r.URL.Query().Get("q"),
		Subject: r.URL.Query().Get("subject"),
		Page:    h.parseInt(r.URL.Query().Get("page"), 1),
		Limit:   h.parseInt(r.URL.Query().Get("limit"), 20),
	}

	list, err := h.svc.Search(r.Context(), q)
	if err != nil {
		h.log.Error("failed to search notes", "error", err)
		h.jsonResponse(w, EmptyList(), http.StatusOK)
		return
	}
	h.jsonResponse(w, list, http.StatusOK)
}

// Subjects handles GET /api/notes/subjects
func (h *Handler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.Subjects(r.Context())
	if err != nil {
		h.log.Error("failed to list subjects", "error", err)
		h.jsonResponse(w, []*Subject{}, http.StatusOK)
		return
	}
	if subjects == nil {
		subjects = []*Subject{}
	}
	h.jsonResponse(w, subjects, http.StatusOK)
}

// GetByID handles GET /api/notes/note/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrInvalidID) {
		h.jsonError(w, "Invalid note ID format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, ErrNoteNotFound) {
		h.jsonError(w, "Note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to get note", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	detail := struct {
		*Note
		DescriptionHTML string `json:"descriptionHtml,omitempty"`
	}{Note: note}
	if note.Description != "" {
		detail.DescriptionHTML = h.svc.RenderMarkdown(note.Description)
	}
	h.jsonResponse(w, detail, http.StatusOK)
}

// --- Mutation handlers (admin only) ---

// Update handles PUT /api/notes/note/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.Update(r.Context(), r.PathValue("id"), input)
	if errors.Is(err, ErrInvalidID) {
		h.jsonError(w, "Invalid note ID format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, ErrNoteNotFound) {
		h.jsonError(w, "Note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to update note", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.jsonResponse(w, note, http.StatusOK)
}

// Delete handles DELETE /api/notes/note/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrInvalidID) {
		h.jsonError(w, "Invalid note ID format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, ErrNoteNotFound) {
		h.jsonError(w, "Note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to delete note", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.jsonResponse(w, map[string]string{"msg": "Note deleted successfully"}, http.StatusOK)
}

// --- Helper methods ---

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
