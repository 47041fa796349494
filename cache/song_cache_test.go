package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"soundwave/db"
	"soundwave/model"
	"soundwave/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo records how often reads reach the underlying store.
type countingRepo struct {
	repository.SongRepository
	lists int
	gets  int
}

func (r *countingRepo) List(ctx context.Context) ([]*model.Song, error) {
	r.lists++
	return r.SongRepository.List(ctx)
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*model.Song, error) {
	r.gets++
	return r.SongRepository.GetByID(ctx, id)
}

// writeDuringList runs write once, after the store has answered a List.
type writeDuringList struct {
	repository.SongRepository
	write func()
}

func (r *writeDuringList) List(ctx context.Context) ([]*model.Song, error) {
	songs, err := r.SongRepository.List(ctx)
	if w := r.write; w != nil {
		r.write = nil
		w()
	}
	return songs, err
}

func setup(t *testing.T) (*countingRepo, repository.SongRepository, *miniredis.Miniredis) {
	t.Helper()
	gdb, err := db.OpenSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.CloseGormDB(gdb) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingRepo{SongRepository: repository.NewGormSongRepository(gdb)}
	return inner, NewSongCache(inner, client, time.Minute), mr
}

func TestSongCache_ListReadsThrough(t *testing.T) {
	inner, c, mr := setup(t)
	ctx := context.Background()

	_, err := c.Create(ctx, &model.Song{ID: "1", Title: "Midnight Dreams"})
	require.NoError(t, err)

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.True(t, mr.Exists(songListKey))
	assert.Equal(t, time.Minute, mr.TTL(songListKey))
}

func TestSongCache_WritesInvalidate(t *testing.T) {
	inner, c, mr := setup(t)
	ctx := context.Background()

	s, err := c.Create(ctx, &model.Song{ID: "2", Title: "Ocean Waves"})
	require.NoError(t, err)

	_, err = c.GetByID(ctx, s.Key)
	require.NoError(t, err)
	_, err = c.List(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(GetSongKey(s.Key)))

	liked := true
	updated, err := c.Update(ctx, s.Key, &model.SongPatch{IsLiked: &liked})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, mr.Exists(songListKey))
	assert.False(t, mr.Exists(GetSongKey(s.Key)))

	got, err := c.GetByID(ctx, s.Key)
	require.NoError(t, err)
	assert.True(t, got.IsLiked)
	assert.Equal(t, 2, inner.gets)

	_, err = c.Delete(ctx, s.Key)
	require.NoError(t, err)
	gone, err := c.GetByID(ctx, s.Key)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSongCache_MissingSongIsNotCached(t *testing.T) {
	_, c, mr := setup(t)

	s, err := c.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.False(t, mr.Exists(GetSongKey("missing")))
}

func TestSongCache_SetAudioURLFlushes(t *testing.T) {
	_, c, mr := setup(t)
	ctx := context.Background()

	s, err := c.Create(ctx, &model.Song{ID: "3", Title: "City Lights"})
	require.NoError(t, err)
	_, err = c.GetByID(ctx, s.Key)
	require.NoError(t, err)
	_, err = c.List(ctx)
	require.NoError(t, err)

	ok, err := c.SetAudioURLByCatalogID(ctx, "3", "https://audio/3.mp3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{generationKey}, mr.Keys())
}

func TestSongCache_RedisDownFallsThrough(t *testing.T) {
	inner, c, mr := setup(t)
	ctx := context.Background()

	_, err := c.Create(ctx, &model.Song{ID: "4", Title: "Mountain High"})
	require.NoError(t, err)
	mr.Close()

	songs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, songs, 1)
	assert.Equal(t, 1, inner.lists)
}

func TestSongCache_ReadRacingWriteIsNotCached(t *testing.T) {
	gdb, err := db.OpenSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.CloseGormDB(gdb) })
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &writeDuringList{SongRepository: repository.NewGormSongRepository(gdb)}
	c := NewSongCache(inner, client, time.Minute)
	ctx := context.Background()

	s, err := c.Create(ctx, &model.Song{ID: "7", Title: "Before"})
	require.NoError(t, err)

	inner.write = func() {
		title := "After"
		_, err := c.Update(ctx, s.Key, &model.SongPatch{Title: &title})
		require.NoError(t, err)
	}
	stale, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Before", stale[0].Title)
	assert.False(t, mr.Exists(songListKey), "stale list must not be cached")

	fresh, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "After", fresh[0].Title)
	assert.True(t, mr.Exists(songListKey))
}
