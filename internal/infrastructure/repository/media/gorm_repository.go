package media

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/database/entities"
	"github.com/janhq/media-catalog/internal/infrastructure/metrics"
	"github.com/janhq/media-catalog/internal/infrastructure/observability"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
	"github.com/janhq/media-catalog/utils/mediaid"
)

// GormRepository persists media records in postgres or sqlite. Ids are med_ ULIDs.
type GormRepository struct {
	db      *gorm.DB
	backend string
	log     zerolog.Logger
}

func NewGormRepository(db *gorm.DB, backend string, log zerolog.Logger) *GormRepository {
	return &GormRepository{
		db:      db,
		backend: backend,
		log:     log.With().Str("component", "media-repository").Str("backend", backend).Logger(),
	}
}

func (r *GormRepository) Create(ctx context.Context, record *domain.Record) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, r.backend, "create")
	defer func() {
		observability.RecordError(span, err)
		span.End()
		metrics.RecordStoreOperation(r.backend, "create", metrics.Status(err))
	}()

	entity := entities.MediaRecord{
		ID:           mediaid.New(),
		Title:        record.Title,
		Description:  record.Description,
		ThumbnailURL: record.ThumbnailURL,
		VideoURL:     record.VideoURL,
		CreatedAt:    record.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create media record",
			err,
			"9b2e4f5a-6c7d-4e8f-9a0b-1c2d3e4f5a6b",
		)
	}
	record.ID = entity.ID
	return nil
}

func (r *GormRepository) List(ctx context.Context) (records []domain.Record, err error) {
	ctx, span := observability.StartStoreSpan(ctx, r.backend, "list")
	defer func() {
		observability.RecordError(span, err)
		span.End()
		metrics.RecordStoreOperation(r.backend, "list", metrics.Status(err))
	}()

	var rows []entities.MediaRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list media records",
			err,
			"4e7a1c3d-8b2f-4d6e-9a5c-0f3b7e1d9c82",
		)
	}

	records = make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapEntity(row))
	}
	return records, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (record *domain.Record, err error) {
	if !mediaid.IsValid(id) {
		r.log.Debug().Str("id", id).Str("reason", "malformed_id").Msg("media record lookup skipped")
		return nil, notFound(ctx, nil)
	}

	ctx, span := observability.StartStoreSpan(ctx, r.backend, "get")
	defer func() {
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			observability.RecordError(span, err)
		}
		span.End()
		metrics.RecordStoreOperation(r.backend, "get", metrics.Status(err))
	}()

	var entity entities.MediaRecord
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, err)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get media record by id",
			err,
			"2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f6a",
		)
	}
	out := mapEntity(entity)
	return &out, nil
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func mapEntity(entity entities.MediaRecord) domain.Record {
	return domain.Record{
		ID:           entity.ID,
		Title:        entity.Title,
		Description:  entity.Description,
		ThumbnailURL: entity.ThumbnailURL,
		VideoURL:     entity.VideoURL,
		CreatedAt:    entity.CreatedAt.UTC(),
	}
}

func notFound(ctx context.Context, err error) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		"media record not found",
		err,
		"1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f",
	)
}
