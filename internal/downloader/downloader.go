// Package downloader fetches note files through an ordered chain of
// fallback strategies. No single URL form is reliable for every
// deployment: the dedicated download endpoint needs the server up, cloud
// attachment URLs need the provider to honor the transformation, and the
// plain static URL works only when the file is still served locally. The
// orchestrator tries each in turn and stops at the first success.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"notesvilla/internal/storage"
)

// Target identifies one file to download: the durable file URL, the
// server's download-endpoint URL for it, and the display filename the
// saved file should carry.
type Target struct {
	FileURL     string
	DownloadURL string
	Filename    string
}

// TargetFor builds a Target from a stored file reference. Cloud-hosted
// files get the provider's force-attachment URL as their endpoint;
// locally served files go through the server's download endpoint so the
// browser saves them under the original name.
func TargetFor(apiBase string, ref storage.FileRef) Target {
	t := Target{FileURL: ref.URL, Filename: ref.OriginalName}
	if storage.IsCloudinaryURL(ref.URL) {
		t.DownloadURL = storage.AttachmentURL(ref.URL, ref.OriginalName)
	} else {
		t.DownloadURL = fmt.Sprintf("%s/api/notes/download/%s?name=%s",
			apiBase, url.PathEscape(ref.StoredName), url.QueryEscape(ref.OriginalName))
	}
	return t
}

// Strategy is one way of fetching a target. A strategy either yields the
// file body or an error; the orchestrator decides what to try next.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, client *http.Client, t Target) (io.ReadCloser, error)
}

// ErrAllFailed is returned when every strategy was exhausted. It carries
// the file URL so callers can offer the user a manual way in.
type ErrAllFailed struct {
	Target Target
}

func (e *ErrAllFailed) Error() string {
	return fmt.Sprintf("all download strategies failed for %q; try opening %s manually",
		e.Target.Filename, e.Target.FileURL)
}

// Downloader runs the strategy chain per file. Batch downloads stagger
// their starts so N near-simultaneous fetches don't get throttled.
type Downloader struct {
	client     *http.Client
	strategies []Strategy
	stagger    time.Duration
	log        *slog.Logger
}

func New(client *http.Client, log *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{
		client: client,
		strategies: []Strategy{
			&EndpointStrategy{},
			&AttachmentStrategy{},
			&StaticStrategy{},
			&ProbeStrategy{},
		},
		stagger: 500 * time.Millisecond,
		log:     log,
	}
}

// WithStrategies replaces the default chain. Order matters.
func (d *Downloader) WithStrategies(strategies ...Strategy) *Downloader {
	d.strategies = strategies
	return d
}

// Download fetches one target into dst, trying strategies in order until
// one succeeds. Returns the name of the winning strategy.
func (d *Downloader) Download(ctx context.Context, t Target, dst io.Writer) (string, error) {
	for _, s := range d.strategies {
		body, err := s.Attempt(ctx, d.client, t)
		if err != nil {
			d.log.Debug("download strategy failed",
				"strategy", s.Name(), "file", t.Filename, "error", err)
			continue
		}

		_, copyErr := io.Copy(dst, body)
		body.Close()
		if copyErr != nil {
			d.log.Debug("download body read failed",
				"strategy", s.Name(), "file", t.Filename, "error", copyErr)
			continue
		}
		return s.Name(), nil
	}
	return "", &ErrAllFailed{Target: t}
}

// Results summarizes a batch download.
type Results struct {
	Total      int
	Successful int
	Failed     int
	Errors     []string
}

// DownloadAll saves each target into dir under its display filename,
// staggering successive starts.
func (d *Downloader) DownloadAll(ctx context.Context, targets []Target, dir string) Results {
	res := Results{Total: len(targets)}
	for i, t := range targets {
		if i > 0 {
			select {
			case <-time.After(d.stagger):
			case <-ctx.Done():
				res.Failed += len(targets) - i
				res.Errors = append(res.Errors, ctx.Err().Error())
				return res
			}
		}

		if err := d.downloadToFile(ctx, t, dir); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Successful++
	}
	return res
}

func (d *Downloader) downloadToFile(ctx context.Context, t Target, dir string) error {
	path := filepath.Join(dir, filepath.Base(t.Filename))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	strategy, err := d.Download(ctx, t, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	d.log.Info("file downloaded", "file", t.Filename, "strategy", strategy)
	return nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
