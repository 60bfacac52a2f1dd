package media

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

// Record is the persisted media entry. Both URLs are resolved before a Record exists.
type Record struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	VideoURL     string    `json:"videoUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate enforces the required-field contract before a record reaches the store.
func (r *Record) Validate(ctx context.Context) error {
	missing := ""
	switch {
	case strings.TrimSpace(r.Title) == "":
		missing = "title"
	case strings.TrimSpace(r.Description) == "":
		missing = "description"
	case strings.TrimSpace(r.ThumbnailURL) == "":
		missing = "thumbnailUrl"
	case strings.TrimSpace(r.VideoURL) == "":
		missing = "videoUrl"
	}
	if missing == "" {
		return nil
	}
	return platformerrors.NewErrorWithContext(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeInternal,
		"media record is incomplete",
		nil,
		"5e0c7a41-92b3-4d6f-a1c8-3f7e2b9d0c64",
		map[string]any{"field": missing},
	)
}

// AssetKind classifies an uploaded asset for the media host.
type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindVideo AssetKind = "video"
)

// Asset is a file accepted by the relay. Ref is the host-side handle used for deletion.
type Asset struct {
	URL  string
	Ref  string
	Kind AssetKind
}

// FileUpload is one multipart file handed over by the HTTP layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Present reports whether the upload carries a file.
func (f *FileUpload) Present() bool {
	return f != nil && f.Open != nil
}

// CreateInput carries the four fields of a create-media request.
type CreateInput struct {
	Title       string
	Description string
	Thumbnail   *FileUpload
	Video       *FileUpload
}

// UploadRequest is what the service hands to the relay for a single asset.
type UploadRequest struct {
	Folder      string
	Kind        AssetKind
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
