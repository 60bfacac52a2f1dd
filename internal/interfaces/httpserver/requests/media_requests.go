package requests

import (
	"io"
	"mime/multipart"

	"github.com/janhq/media-catalog/internal/domain/media"
)

// UploadMediaRequest is the multipart form accepted by POST /upload.
type UploadMediaRequest struct {
	Title       string                `form:"title"`
	Description string                `form:"description"`
	Thumbnail   *multipart.FileHeader `form:"thumbnail"`
	Video       *multipart.FileHeader `form:"video"`
}

// ToDomain converts request to domain model. Missing files stay nil so the service can report them.
func (r *UploadMediaRequest) ToDomain() media.CreateInput {
	return media.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Thumbnail:   fileUpload(r.Thumbnail),
		Video:       fileUpload(r.Video),
	}
}

func fileUpload(header *multipart.FileHeader) *media.FileUpload {
	if header == nil {
		return nil
	}
	return &media.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}
