// notesctl is a small client for a NotesVilla server: list subjects and
// notes, and pull down every file of a note through the same
// fallback-strategy chain the web frontend uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"notesvilla/internal/downloader"
	"notesvilla/internal/notes"
)

func main() {
	apiBase := flag.String("api", "http://localhost:5000", "NotesVilla server base URL")
	outDir := flag.String("out", ".", "directory to save downloaded files into")
	subject := flag.String("subject", "", "filter listings by subject")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	client := &http.Client{Timeout: 60 * time.Second}
	ctx := context.Background()

	var err error
	switch flag.Arg(0) {
	case "subjects":
		err = listSubjects(ctx, client, *apiBase)
	case "list":
		err = listNotes(ctx, client, *apiBase, *subject)
	case "download":
		if flag.NArg() < 2 {
			err = fmt.Errorf("download requires a note ID")
			break
		}
		err = downloadNote(ctx, client, logger, *apiBase, flag.Arg(1), *outDir)
	default:
		err = fmt.Errorf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: notesctl [flags] <command>

commands:
  subjects              list all subjects
  list                  list notes (use -subject to filter)
  download <note-id>    download all files of a note into -out

flags:
`)
	flag.PrintDefaults()
}

func listSubjects(ctx context.Context, client *http.Client, apiBase string) error {
	var subjects []notes.Subject
	if err := getJSON(ctx, client, apiBase+"/api/notes/subjects", &subjects); err != nil {
		return err
	}
	for _, s := range subjects {
		fmt.Println(s.Name)
	}
	return nil
}

func listNotes(ctx context.Context, client *http.Client, apiBase, subject string) error {
	url := apiBase + "/api/notes"
	if subject != "" {
		url = apiBase + "/api/notes/subject/" + subject
	}

	var list notes.NoteList
	if err := getJSON(ctx, client, url, &list); err != nil {
		return err
	}
	for _, n := range list.Notes {
		fmt.Printf("%s  %-10s  %s (%d file(s))\n",
			n.ID.Hex(), n.SubjectName, n.Title, len(n.Files))
	}
	if list.Pagination.HasNextPage {
		fmt.Printf("... %d more notes on later pages\n",
			list.Pagination.TotalNotes-int64(len(list.Notes)))
	}
	return nil
}

func downloadNote(ctx context.Context, client *http.Client, logger *slog.Logger, apiBase, id, outDir string) error {
	var note notes.Note
	if err := getJSON(ctx, client, apiBase+"/api/notes/note/"+id, &note); err != nil {
		return err
	}
	if len(note.Files) == 0 {
		return fmt.Errorf("note %s has no files", id)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	targets := make([]downloader.Target, len(note.Files))
	for i, ref := range note.Files {
		targets[i] = downloader.TargetFor(apiBase, ref)
	}

	dl := downloader.New(client, logger)
	res := dl.DownloadAll(ctx, targets, outDir)

	fmt.Printf("downloaded %d/%d file(s)\n", res.Successful, res.Total)
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, " ", e)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", res.Failed)
	}
	return nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
