package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/media-catalog/internal/config"
	"github.com/janhq/media-catalog/internal/infrastructure/metrics"
	"github.com/janhq/media-catalog/internal/infrastructure/observability"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

// sniffLen matches the read limit mimetype uses for detection.
const sniffLen = 3072

// ErrCompensationFailed is joined into a create error when uploaded assets could not be removed.
var ErrCompensationFailed = errors.New("media: compensation failed, uploaded assets may be orphaned")

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	List(ctx context.Context) ([]Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	Ping(ctx context.Context) error
}

// AssetRelay uploads binary assets to the external media host.
type AssetRelay interface {
	Upload(ctx context.Context, req UploadRequest) (*Asset, error)
	Delete(ctx context.Context, asset Asset) error
}

// Service describes the media catalog use cases.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Ready(ctx context.Context) error
}

type service struct {
	cfg   *config.Config
	repo  Repository
	relay AssetRelay
	log   zerolog.Logger
}

// NewService wires the media service with its store and relay.
func NewService(cfg *config.Config, repo Repository, relay AssetRelay, log zerolog.Logger) Service {
	return &service{
		cfg:   cfg,
		repo:  repo,
		relay: relay,
		log:   log.With().Str("component", "media-service").Logger(),
	}
}

// Create uploads both assets concurrently, then persists the record. Assets already uploaded
// when a later step fails are deleted on a best-effort basis.
func (s *service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	if err := validateInput(ctx, in); err != nil {
		return nil, err
	}

	ctx, span := observability.StartCreateSpan(ctx, in.Title)
	defer span.End()

	var thumbnail, video *Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		asset, err := s.upload(gctx, in.Thumbnail, s.cfg.ThumbnailFolder, AssetKindImage)
		thumbnail = asset
		return err
	})
	g.Go(func() error {
		asset, err := s.upload(gctx, in.Video, s.cfg.VideoFolder, AssetKindVideo)
		video = asset
		return err
	})

	err := g.Wait()
	uploaded := collectAssets(thumbnail, video)
	if err != nil {
		observability.RecordError(span, err)
		return nil, s.compensate(ctx, uploaded, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "upload media assets"))
	}

	record := &Record{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		ThumbnailURL: thumbnail.URL,
		VideoURL:     video.URL,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := record.Validate(ctx); err != nil {
		observability.RecordError(span, err)
		return nil, s.compensate(ctx, uploaded, err)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		observability.RecordError(span, err)
		return nil, s.compensate(ctx, uploaded, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "persist media record"))
	}

	s.log.Info().
		Str("id", record.ID).
		Str("thumbnail_ref", thumbnail.Ref).
		Str("video_ref", video.Ref).
		Msg("media created")

	return record, nil
}

func (s *service) List(ctx context.Context) ([]Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list media")
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *service) Get(ctx context.Context, id string) (*Record, error) {
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get media")
	}
	return record, nil
}

func (s *service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *service) upload(ctx context.Context, file *FileUpload, folder string, kind AssetKind) (*Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			fmt.Sprintf("open %s upload", kind), err, "0b6f2d8e-4c1a-4e57-9d3b-7a2c5e8f1d90")
	}
	defer src.Close()

	body := bufio.NewReaderSize(src, sniffLen)
	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := body.Peek(sniffLen)
		contentType = mimetype.Detect(head).String()
	}

	asset, err := s.relay.Upload(ctx, UploadRequest{
		Folder:      folder,
		Kind:        kind,
		Filename:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Body:        body,
	})
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.URL == "" {
		return asset, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("relay returned no url for %s", kind), nil, "c3a9e1f7-2d4b-4b8a-8e6c-1f5d7b3a9e20")
	}

	metrics.RecordUploadBytes(string(kind), file.Size)
	return asset, nil
}

// compensate deletes already uploaded assets and returns the error to report. The cause is
// always part of the result; a failed cleanup adds ErrCompensationFailed.
func (s *service) compensate(ctx context.Context, assets []Asset, cause error) error {
	if len(assets) == 0 || !s.cfg.CompensateOnFailure {
		if len(assets) > 0 {
			s.log.Warn().Int("assets", len(assets)).Msg("compensation disabled, uploaded assets left on media host")
		}
		return cause
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CompensationTimeout)
	defer cancel()

	var failures []error
	for _, asset := range assets {
		err := s.relay.Delete(cctx, asset)
		metrics.RecordCompensation(metrics.Status(err))
		observability.AddCompensationEvent(ctx, asset.Ref, err)
		if err != nil {
			failures = append(failures, fmt.Errorf("delete %s asset %s: %w", asset.Kind, asset.Ref, err))
			s.log.Error().
				Err(err).
				Str("ref", asset.Ref).
				Str("kind", string(asset.Kind)).
				Bool("compensation_failed", true).
				Msg("compensating delete failed")
			continue
		}
		s.log.Info().Str("ref", asset.Ref).Str("kind", string(asset.Kind)).Msg("compensating delete succeeded")
	}

	if len(failures) == 0 {
		return cause
	}
	return errors.Join(cause, ErrCompensationFailed, errors.Join(failures...))
}

func validateInput(ctx context.Context, in CreateInput) error {
	var message string
	switch {
	case strings.TrimSpace(in.Title) == "":
		message = "title is required"
	case strings.TrimSpace(in.Description) == "":
		message = "description is required"
	case !in.Thumbnail.Present():
		message = "thumbnail file is required"
	case !in.Video.Present():
		message = "video file is required"
	default:
		return nil
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		message, nil, "8d4e2b6a-1f3c-4a7e-b5d9-6c0a2e4f8b13")
}

func collectAssets(assets ...*Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		if asset != nil && asset.Ref != "" {
			out = append(out, *asset)
		}
	}
	return out
}
