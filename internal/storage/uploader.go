package storage

import (
	"context"
	"log/slog"

	"notesvilla/internal/config"
)

// Uploader is the storage backend adapter. The cloud backend is chosen
// once at startup from configuration presence (Cloudinary over S3); the
// local backend always exists because it doubles as the staging area.
type Uploader struct {
	cloud Backend // nil when no cloud provider is configured
	local *Local
	log   *slog.Logger
}

func NewUploader(cfg *config.Config, log *slog.Logger) (*Uploader, error) {
	local, err := NewLocal(cfg.UploadsDir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	var cloud Backend
	switch {
	case cfg.Cloudinary.Enabled():
		cloud, err = NewCloudinary(cfg.Cloudinary)
	case cfg.S3.Enabled():
		cloud, err = NewS3(cfg.S3)
	}
	if err != nil {
		return nil, err
	}

	u := &Uploader{cloud: cloud, local: local, log: log}
	log.Info("storage backend selected", "backend", u.BackendName())
	return u, nil
}

// Local exposes the local backend for direct path lookups (downloads).
func (u *Uploader) Local() *Local { return u.local }

func (u *Uploader) BackendName() string {
	if u.cloud != nil {
		return u.cloud.Name()
	}
	return u.local.Name()
}

// StoreBatch resolves durable references for a batch of staged files.
// A cloud failure for any file degrades the whole batch to local URLs:
// already-uploaded cloud copies are removed best-effort so a partial
// batch never leaves duplicate stored copies behind. An upload therefore
// never hard-fails purely because the cloud provider is down.
func (u *Uploader) StoreBatch(ctx context.Context, staged []StagedFile) []FileRef {
	refs := make([]FileRef, len(staged))
	for i, f := range staged {
		refs[i], _ = u.local.Store(ctx, f)
	}
	if u.cloud == nil {
		return refs
	}

	cloudRefs := make([]FileRef, 0, len(staged))
	for _, f := range staged {
		ref, err := u.cloud.Store(ctx, f)
		if err != nil {
			u.log.Warn("cloud upload skipped, serving batch locally",
				"backend", u.cloud.Name(), "file", f.StoredName, "error", err)
			u.discardCloudCopies(ctx, cloudRefs)
			return refs
		}
		cloudRefs = append(cloudRefs, ref)
	}
	return cloudRefs
}

func (u *Uploader) discardCloudCopies(ctx context.Context, refs []FileRef) {
	for _, ref := range refs {
		if err := u.cloud.Remove(ctx, ref); err != nil {
			u.log.Warn("failed to discard partial cloud upload",
				"file", ref.StoredName, "error", err)
		}
	}
}

// Remove deletes every stored copy of a file: the staged local copy
// always, plus the cloud copy when the reference carries a provider ID.
func (u *Uploader) Remove(ctx context.Context, ref FileRef) error {
	if ref.ProviderID != "" && u.cloud != nil {
		if err := u.cloud.Remove(ctx, ref); err != nil {
			return err
		}
	}
	return u.local.Remove(ctx, ref)
}
