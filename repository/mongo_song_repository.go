package repository

import (
	"context"
	"errors"
	"fmt"

	"soundwave/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoSongRepository implements SongRepository on a MongoDB collection.
type mongoSongRepository struct {
	coll *mongo.Collection
}

// NewMongoSongRepository creates a song repository on the given collection.
func NewMongoSongRepository(coll *mongo.Collection) SongRepository {
	return &mongoSongRepository{coll: coll}
}

// objectID parses a route key. ok is false for keys that cannot name a
// document, which callers treat as not found.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (r *mongoSongRepository) List(ctx context.Context) ([]*model.Song, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to find songs: %w", err)
	}
	defer cur.Close(ctx)

	songs := make([]*model.Song, 0)
	for cur.Next(ctx) {
		var s model.Song
		if err := cur.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode song: %w", err)
		}
		songs = append(songs, &s)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error during cursor iteration: %w", err)
	}
	return songs, nil
}

func (r *mongoSongRepository) GetByID(ctx context.Context, id string) (*model.Song, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var s model.Song
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get song %s: %w", id, err)
	}
	return &s, nil
}

func (r *mongoSongRepository) Create(ctx context.Context, song *model.Song) (*model.Song, error) {
	doc := song.Clone()
	doc.Key = ""
	if doc.Lyrics == nil {
		doc.Lyrics = model.Lyrics{}
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert song: %w", err)
	}
	switch v := res.InsertedID.(type) {
	case primitive.ObjectID:
		doc.Key = v.Hex()
	case string:
		doc.Key = v
	default:
		doc.Key = fmt.Sprint(v)
	}
	return doc, nil
}

func (r *mongoSongRepository) Update(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s model.Song
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch.Fields()}, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update song %s: %w", id, err)
	}
	return &s, nil
}

func (r *mongoSongRepository) Delete(ctx context.Context, id string) (*model.Song, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var s model.Song
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete song %s: %w", id, err)
	}
	return &s, nil
}

func (r *mongoSongRepository) SetAudioURLByCatalogID(ctx context.Context, catalogID, audioURL string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": catalogID}, bson.M{"$set": bson.M{"audioUrl": audioURL}})
	if err != nil {
		return false, fmt.Errorf("failed to set audio url for catalog id %s: %w", catalogID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoSongRepository) ExistsByCatalogID(ctx context.Context, catalogID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": catalogID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count songs with catalog id %s: %w", catalogID, err)
	}
	return n > 0, nil
}
