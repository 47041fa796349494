package repository

import (
	"context"
	"testing"

	"soundwave/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func songDoc(oid primitive.ObjectID, title string) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "id", Value: "1"},
		{Key: "title", Value: title},
		{Key: "artist", Value: "Luna Eclipse"},
		{Key: "isLiked", Value: true},
		{Key: "lyrics", Value: bson.A{"a", "b"}},
		{Key: "audioUrl", Value: "https://audio/1.mp3"},
	}
}

func TestMongoSongRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by id decodes document", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, songDoc(oid, "Midnight Dreams")))

		s, err := repo.GetByID(ctx, oid.Hex())
		require.NoError(mt, err)
		require.NotNil(mt, s)
		assert.Equal(mt, oid.Hex(), s.Key)
		assert.Equal(mt, "Midnight Dreams", s.Title)
		assert.Equal(mt, model.Lyrics{"a", "b"}, s.Lyrics)
		assert.True(mt, s.IsLiked)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		s, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Nil(mt, s)
	})

	mt.Run("malformed id is not found without a round trip", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)

		s, err := repo.GetByID(ctx, "not-an-object-id")
		require.NoError(mt, err)
		assert.Nil(mt, s)

		d, err := repo.Delete(ctx, "nope")
		require.NoError(mt, err)
		assert.Nil(mt, d)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			songDoc(primitive.NewObjectID(), "Midnight Dreams"),
			songDoc(primitive.NewObjectID(), "Ocean Waves"),
		))

		songs, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, songs, 2)
		assert.Equal(mt, "Ocean Waves", songs[1].Title)
	})

	mt.Run("create assigns object id", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s, err := repo.Create(ctx, &model.Song{ID: "9", Title: "Electric Storm"})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(s.Key)
		assert.NoError(mt, err)
		assert.Equal(mt, model.Lyrics{}, s.Lyrics)
	})

	mt.Run("update returns document after", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: songDoc(oid, "Renamed")}))

		title := "Renamed"
		s, err := repo.Update(ctx, oid.Hex(), &model.SongPatch{Title: &title})
		require.NoError(mt, err)
		require.NotNil(mt, s)
		assert.Equal(mt, "Renamed", s.Title)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		title := "x"
		s, err := repo.Update(ctx, primitive.NewObjectID().Hex(), &model.SongPatch{Title: &title})
		require.NoError(mt, err)
		assert.Nil(mt, s)
	})

	mt.Run("delete returns removed document", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: songDoc(oid, "Gone")}))

		s, err := repo.Delete(ctx, oid.Hex())
		require.NoError(mt, err)
		require.NotNil(mt, s)
		assert.Equal(mt, oid.Hex(), s.Key)
	})

	mt.Run("store error is wrapped", func(mt *mtest.T) {
		repo := NewMongoSongRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad", Name: "BadValue"}))

		_, err := repo.List(ctx)
		assert.Error(mt, err)
	})
}
