package responses

import (
	"time"

	"github.com/janhq/media-catalog/internal/domain/media"
)

// MediaResponse is the JSON shape of a media record.
type MediaResponse struct {
	ID           string    `json:"id" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	Title        string    `json:"title" example:"Demo"`
	Description  string    `json:"description" example:"A demo video"`
	ThumbnailURL string    `json:"thumbnailUrl" example:"https://res.cloudinary.com/demo/image/upload/v1/thumbnails/abc.png"`
	VideoURL     string    `json:"videoUrl" example:"https://res.cloudinary.com/demo/video/upload/v1/videos/def.mp4"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BuildMediaResponse creates response from domain object
func BuildMediaResponse(record *media.Record) MediaResponse {
	return MediaResponse{
		ID:           record.ID,
		Title:        record.Title,
		Description:  record.Description,
		ThumbnailURL: record.ThumbnailURL,
		VideoURL:     record.VideoURL,
		CreatedAt:    record.CreatedAt,
	}
}

// BuildMediaListResponse never returns nil so an empty catalog encodes as [].
func BuildMediaListResponse(records []media.Record) []MediaResponse {
	out := make([]MediaResponse, 0, len(records))
	for i := range records {
		out = append(out, BuildMediaResponse(&records[i]))
	}
	return out
}
