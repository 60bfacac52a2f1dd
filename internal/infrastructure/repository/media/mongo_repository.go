package media

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/metrics"
	"github.com/janhq/media-catalog/internal/infrastructure/observability"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

// mediaDocument is the stored shape of a media record.
type mediaDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	ThumbnailURL string             `bson:"thumbnailUrl"`
	VideoURL     string             `bson:"videoUrl"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// MongoRepository persists media records in a MongoDB collection. Ids are ObjectID hex strings.
type MongoRepository struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

func NewMongoRepository(coll *mongo.Collection, log zerolog.Logger) *MongoRepository {
	return &MongoRepository{
		coll: coll,
		log:  log.With().Str("component", "media-repository").Str("backend", config.StoreMongo).Logger(),
	}
}

func (r *MongoRepository) Create(ctx context.Context, record *domain.Record) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, config.StoreMongo, "create")
	defer func() {
		observability.RecordError(span, err)
		span.End()
		metrics.RecordStoreOperation(config.StoreMongo, "create", metrics.Status(err))
	}()

	doc := mediaDocument{
		ID:           primitive.NewObjectID(),
		Title:        record.Title,
		Description:  record.Description,
		ThumbnailURL: record.ThumbnailURL,
		VideoURL:     record.VideoURL,
		CreatedAt:    record.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert media document",
			err,
			"6a1e9c4f-2b7d-4f8a-b3e0-9d5c1a7f4e26",
		)
	}
	record.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepository) List(ctx context.Context) (records []domain.Record, err error) {
	ctx, span := observability.StartStoreSpan(ctx, config.StoreMongo, "list")
	defer func() {
		observability.RecordError(span, err)
		span.End()
		metrics.RecordStoreOperation(config.StoreMongo, "list", metrics.Status(err))
	}()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, listError(ctx, err)
	}
	defer cursor.Close(ctx)

	var docs []mediaDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, listError(ctx, err)
	}

	records = make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, mapDocument(doc))
	}
	return records, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (record *domain.Record, err error) {
	oid, parseErr := primitive.ObjectIDFromHex(id)
	if parseErr != nil {
		r.log.Debug().Str("id", id).Str("reason", "malformed_id").Msg("media record lookup skipped")
		return nil, notFound(ctx, nil)
	}

	ctx, span := observability.StartStoreSpan(ctx, config.StoreMongo, "get")
	defer func() {
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			observability.RecordError(span, err)
		}
		span.End()
		metrics.RecordStoreOperation(config.StoreMongo, "get", metrics.Status(err))
	}()

	var doc mediaDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(ctx, err)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find media document",
			err,
			"b8d2f6a0-4c9e-4a1b-8e7d-3f6a0c4b9d15",
		)
	}
	out := mapDocument(doc)
	return &out, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func mapDocument(doc mediaDocument) domain.Record {
	return domain.Record{
		ID:           doc.ID.Hex(),
		Title:        doc.Title,
		Description:  doc.Description,
		ThumbnailURL: doc.ThumbnailURL,
		VideoURL:     doc.VideoURL,
		CreatedAt:    doc.CreatedAt.UTC(),
	}
}

func listError(ctx context.Context, err error) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to list media documents",
		err,
		"d5f9b3e7-1a6c-4e2d-a8f4-7c0e3b6d1a98",
	)
}
