package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"

	"notesvilla/internal/storage"
)

var errNotApplicable = errors.New("strategy not applicable")

// EndpointStrategy fetches through the server's download endpoint (or the
// provider attachment URL for cloud files). Most reliable when the server
// is reachable: the endpoint controls content type and disposition.
type EndpointStrategy struct{}

func (s *EndpointStrategy) Name() string { return "endpoint" }

func (s *EndpointStrategy) Attempt(ctx context.Context, client *http.Client, t Target) (io.ReadCloser, error) {
	if t.DownloadURL == "" {
		return nil, errNotApplicable
	}
	return fetch(ctx, client, t.DownloadURL)
}

// AttachmentStrategy retries a cloud-hosted file through its provider
// force-attachment URL, built fresh from the durable file URL. Covers the
// case where the stored DownloadURL points at a dead server but the cloud
// copy is alive.
type AttachmentStrategy struct{}

func (s *AttachmentStrategy) Name() string { return "attachment" }

func (s *AttachmentStrategy) Attempt(ctx context.Context, client *http.Client, t Target) (io.ReadCloser, error) {
	if !storage.IsCloudinaryURL(t.FileURL) {
		return nil, errNotApplicable
	}
	return fetch(ctx, client, storage.AttachmentURL(t.FileURL, t.Filename))
}

// StaticStrategy falls back to the plain durable URL, i.e. the statically
// served /uploads/ path or the raw cloud URL.
type StaticStrategy struct{}

func (s *StaticStrategy) Name() string { return "static" }

func (s *StaticStrategy) Attempt(ctx context.Context, client *http.Client, t Target) (io.ReadCloser, error) {
	if t.FileURL == "" || t.FileURL == t.DownloadURL {
		return nil, errNotApplicable
	}
	return fetch(ctx, client, t.FileURL)
}

// ProbeStrategy is the last resort: verify the resource answers a HEAD
// request before fetching it, which weeds out origins that hang on GET.
type ProbeStrategy struct{}

func (s *ProbeStrategy) Name() string { return "probe" }

func (s *ProbeStrategy) Attempt(ctx context.Context, client *http.Client, t Target) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.FileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.New("probe rejected")
	}
	return fetch(ctx, client, t.FileURL)
}
