package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver/requests"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver/responses"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

const (
	msgUploadFailed  = "Failed to upload media"
	msgFetchFailed   = "Failed to fetch media"
	msgMediaNotFound = "Media not found"
)

// MediaHandler exposes media endpoints.
type MediaHandler struct {
	cfg     *config.Config
	service domain.Service
	log     zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, service domain.Service, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "media-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload media
// @Description  Relays a thumbnail and a video to the media host and stores the resulting record.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        title        formData  string  true  "Title"
// @Param        description  formData  string  true  "Description"
// @Param        thumbnail    formData  file    true  "Thumbnail image"
// @Param        video        formData  file    true  "Video file"
// @Success      200  {object}  responses.MediaResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	var req requests.UploadMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to parse upload form")
		responses.Abort(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	record, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.logError(err, "upload media failed")
		if platformerrors.HTTPStatus(err) == http.StatusBadRequest {
			responses.Abort(c, http.StatusBadRequest, platformerrors.GetPlatformError(err).Message)
			return
		}
		responses.Abort(c, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaResponse(record))
}

// List godoc
// @Summary      List media
// @Description  Returns every stored media record.
// @Tags         media
// @Produce      json
// @Success      200  {array}   responses.MediaResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /media [get]
func (h *MediaHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logError(err, "list media failed")
		responses.Abort(c, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaListResponse(records))
}

// Get godoc
// @Summary      Get media
// @Description  Returns one media record by id.
// @Tags         media
// @Produce      json
// @Param        id   path      string  true  "Media id"
// @Success      200  {object}  responses.MediaResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if platformerrors.HTTPStatus(err) == http.StatusNotFound {
			responses.Abort(c, http.StatusNotFound, msgMediaNotFound)
			return
		}
		h.logError(err, "get media failed")
		responses.Abort(c, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	c.JSON(http.StatusOK, responses.BuildMediaResponse(record))
}

func (h *MediaHandler) logError(err error, msg string) {
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		platformerrors.LogError(h.log, pe)
		return
	}
	h.log.Error().Err(err).Msg(msg)
}
