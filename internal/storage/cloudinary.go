package storage

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"notesvilla/internal/config"
)

// Cloudinary pushes staged files to Cloudinary. Documents are uploaded as
// raw assets, everything else as auto-detected media.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Store(ctx context.Context, f StagedFile) (FileRef, error) {
	resourceType := "auto"
	if IsDocument(f.StoredName) {
		resourceType = "raw"
	}

	publicID := strings.TrimSuffix(f.StoredName, filepath.Ext(f.StoredName))

	resp, err := c.cld.Upload.Upload(ctx, f.Path, uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       publicID,
		ResourceType:   resourceType,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("cloudinary upload %s: %w", f.StoredName, err)
	}

	return FileRef{
		URL:          resp.SecureURL,
		StoredName:   f.StoredName,
		OriginalName: f.OriginalName,
		ProviderID:   resp.PublicID,
	}, nil
}

func (c *Cloudinary) Remove(ctx context.Context, ref FileRef) error {
	resourceType := "image"
	if IsDocument(ref.StoredName) {
		resourceType = "raw"
	}

	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     ref.ProviderID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", ref.ProviderID, err)
	}
	return nil
}

func (c *Cloudinary) Name() string { return "cloudinary" }

// IsCloudinaryURL reports whether the URL points at Cloudinary delivery.
func IsCloudinaryURL(rawURL string) bool {
	return strings.Contains(rawURL, "res.cloudinary.com") ||
		strings.Contains(rawURL, ".cloudinary.com")
}

const (
	rawUploadMarker   = "/raw/upload/"
	imageUploadMarker = "/image/upload/"
)

// AttachmentURL rewrites a Cloudinary delivery URL into its force-download
// form by inserting an fl_attachment segment carrying the display filename.
// Documents delivered through the image pipeline are first moved to raw
// delivery. Non-Cloudinary URLs are returned unchanged.
func AttachmentURL(rawURL, filename string) string {
	if !IsCloudinaryURL(rawURL) {
		return rawURL
	}
	if filename == "" {
		filename = "download"
	}

	adjusted := rawURL
	if IsDocument(rawURL) && strings.Contains(adjusted, imageUploadMarker) {
		adjusted = strings.Replace(adjusted, imageUploadMarker, rawUploadMarker, 1)
	}

	flag := "fl_attachment:" + url.PathEscape(filename) + "/"
	if strings.Contains(adjusted, rawUploadMarker) {
		return strings.Replace(adjusted, rawUploadMarker, rawUploadMarker+flag, 1)
	}
	if strings.Contains(adjusted, imageUploadMarker) {
		return strings.Replace(adjusted, imageUploadMarker, imageUploadMarker+flag, 1)
	}
	return adjusted
}
