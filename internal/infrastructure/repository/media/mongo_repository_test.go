package media

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

func mediaDoc(id primitive.ObjectID, title string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "description", Value: "A demo video"},
		{Key: "thumbnailUrl", Value: "https://res.example.com/thumbnails/" + title + ".png"},
		{Key: "videoUrl", Value: "https://res.example.com/videos/" + title + ".mp4"},
		{Key: "createdAt", Value: createdAt},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	createdAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	mt.Run("create assigns object id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record := sampleRecord("demo")
		require.NoError(mt, repo.Create(context.Background(), record))

		_, err := primitive.ObjectIDFromHex(record.ID)
		assert.NoError(mt, err)
	})

	mt.Run("create reports write errors", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(context.Background(), sampleRecord("demo"))
		require.Error(mt, err)
		assert.True(mt, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
	})

	mt.Run("list returns documents", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			mediaDoc(first, "first", createdAt),
			mediaDoc(second, "second", createdAt),
		))

		records, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, first.Hex(), records[0].ID)
		assert.Equal(mt, "second", records[1].Title)
		assert.True(mt, createdAt.Equal(records[1].CreatedAt))
	})

	mt.Run("list of empty collection is empty slice", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		records, err := repo.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		id := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mediaDoc(id, "demo", createdAt)))

		record, err := repo.GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), record.ID)
		assert.Equal(mt, "demo", record.Title)
		assert.Equal(mt, "https://res.example.com/videos/demo.mp4", record.VideoURL)
	})

	mt.Run("get unknown id is not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.True(mt, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	})

	mt.Run("malformed id is not found without a round trip", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, zerolog.Nop())

		_, err := repo.GetByID(context.Background(), "med_01hx5n2k7q8r9s0t1v2w3x4y5z")
		require.Error(mt, err)
		assert.True(mt, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	})
}
