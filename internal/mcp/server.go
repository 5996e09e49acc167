package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"notesvilla/internal/notes"
	"notesvilla/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the public note-browsing
// surface as tools, so agents can search the library and hand out
// download links.
func NewServer(svc *notes.Service, baseURL string) *server.MCPServer {
	s := server.NewMCPServer(
		"NotesVilla",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_subjects",
			mcp.WithDescription("List all subjects that have at least one uploaded note."),
		),
		handleListSubjects(svc),
	)

	s.AddTool(
		mcp.NewTool("get_notes",
			mcp.WithDescription("Get notes, optionally filtered by subject, newest first."),
			mcp.WithString("subject",
				mcp.Description("Optional: subject name to filter by"),
			),
			mcp.WithNumber("page",
				mcp.Description("Page number (default: 1)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Notes per page (default: 20, max: 100)"),
			),
		),
		handleGetNotes(svc),
	)

	s.AddTool(
		mcp.NewTool("search_notes",
			mcp.WithDescription("Full-text search across note titles and descriptions, with optional subject filter."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query"),
			),
			mcp.WithString("subject",
				mcp.Description("Optional: subject name to filter by"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 20, max: 100)"),
			),
		),
		handleSearchNotes(svc),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID, including its file list."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(svc),
	)

	s.AddTool(
		mcp.NewTool("get_download_links",
			mcp.WithDescription("Get direct download links for every file attached to a note. Each link serves the file under its original filename."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetDownloadLinks(svc, baseURL),
	)

	return s
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SubjectName string    `json:"subjectName"`
	Date        time.Time `json:"date"`
	FileCount   int       `json:"fileCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DownloadLink pairs an original filename with a force-download URL
type DownloadLink struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func handleListSubjects(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjects, err := svc.Subjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list subjects: %v", err)), nil
		}

		data, _ := json.MarshalIndent(subjects, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.List(ctx, notes.ListQuery{
			Subject: req.GetString("subject", ""),
			Page:    req.GetInt("page", 1),
			Limit:   req.GetInt("limit", 20),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get notes: %v", err)), nil
		}

		data, _ := json.MarshalIndent(notesToResults(list.Notes), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleSearchNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		list, err := svc.Search(ctx, notes.SearchQuery{
			Query:   query,
			Subject: req.GetString("subject", ""),
			Limit:   req.GetInt("limit", 20),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to search notes: %v", err)), nil
		}

		data, _ := json.MarshalIndent(notesToResults(list.Notes), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.GetByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(note, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetDownloadLinks(svc *notes.Service, baseURL string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.GetByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		links := make([]DownloadLink, len(note.Files))
		for i, ref := range note.Files {
			links[i] = DownloadLink{
				Filename: ref.OriginalName,
				URL:      downloadURL(baseURL, ref),
			}
		}

		data, _ := json.MarshalIndent(links, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func downloadURL(baseURL string, ref storage.FileRef) string {
	if storage.IsCloudinaryURL(ref.URL) {
		return storage.AttachmentURL(ref.URL, ref.OriginalName)
	}
	return fmt.Sprintf("%s/api/notes/download/%s?name=%s",
		baseURL, url.PathEscape(ref.StoredName), url.QueryEscape(ref.OriginalName))
}

func notesToResults(noteList []*notes.Note) []NoteResult {
	results := make([]NoteResult, len(noteList))
	for i, note := range noteList {
		results[i] = NoteResult{
			ID:          note.ID.Hex(),
			Title:       note.Title,
			Description: note.Description,
			SubjectName: note.SubjectName,
			Date:        note.Date,
			FileCount:   len(note.Files),
			CreatedAt:   note.CreatedAt,
		}
	}
	return results
}
