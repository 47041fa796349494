package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"

	"github.com/redis/go-redis/v9"
)

const (
	songListKey   = "songs:all"
	songKeyPrefix = "songs:"
	// generationKey is bumped by every invalidation. It sits outside the
	// songs: prefix so flush leaves it alone.
	generationKey = "songcache:gen"
)

var errStaleRead = errors.New("song cache generation changed")

// GetSongKey 根据歌曲ID生成Redis键
func GetSongKey(id string) string {
	return songKeyPrefix + id
}

// songCache is a read-through redis cache in front of a SongRepository.
// Redis errors are logged and the call falls through to the wrapped store.
type songCache struct {
	next   repository.SongRepository
	client *redis.Client
	ttl    time.Duration
}

// NewSongCache wraps repo with a redis read-through cache.
func NewSongCache(repo repository.SongRepository, client *redis.Client, ttl time.Duration) repository.SongRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &songCache{next: repo, client: client, ttl: ttl}
}

func (c *songCache) load(ctx context.Context, key string, v interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Failed to read song cache", logger.String("key", key), logger.ErrorField(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Warn("Dropping undecodable cache entry", logger.String("key", key), logger.ErrorField(err))
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// generation returns the current invalidation counter. ok is false when redis
// cannot be read, in which case nothing should be cached.
func (c *songCache) generation(ctx context.Context) (int64, bool) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("Failed to read song cache generation", logger.ErrorField(err))
		return 0, false
	}
	return gen, true
}

// store caches v only if no invalidation happened since gen was read, so a
// read that raced a write never repopulates stale data.
func (c *songCache) store(ctx context.Context, key string, v interface{}, gen int64) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode cache entry", logger.String("key", key), logger.ErrorField(err))
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		logger.Debug("Skipping stale song cache entry", logger.String("key", key))
	default:
		logger.Warn("Failed to write song cache", logger.String("key", key), logger.ErrorField(err))
	}
}

// invalidate 删除列表缓存以及相关歌曲的缓存
func (c *songCache) invalidate(ctx context.Context, ids ...string) {
	keys := []string{songListKey}
	for _, id := range ids {
		if id != "" {
			keys = append(keys, GetSongKey(id))
		}
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		logger.Warn("Failed to invalidate song cache", logger.Strings("keys", keys), logger.ErrorField(err))
	}
}

func (c *songCache) List(ctx context.Context) ([]*model.Song, error) {
	var songs []*model.Song
	if c.load(ctx, songListKey, &songs) && songs != nil {
		logger.Debug("Song list served from cache", logger.Int("count", len(songs)))
		return songs, nil
	}
	gen, ok := c.generation(ctx)
	songs, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, songListKey, songs, gen)
	}
	return songs, nil
}

func (c *songCache) GetByID(ctx context.Context, id string) (*model.Song, error) {
	var song model.Song
	if c.load(ctx, GetSongKey(id), &song) {
		return &song, nil
	}
	gen, ok := c.generation(ctx)
	s, err := c.next.GetByID(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	if ok {
		c.store(ctx, GetSongKey(id), s, gen)
	}
	return s, nil
}

func (c *songCache) Create(ctx context.Context, song *model.Song) (*model.Song, error) {
	s, err := c.next.Create(ctx, song)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, s.Key)
	return s, nil
}

func (c *songCache) Update(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error) {
	s, err := c.next.Update(ctx, id, patch)
	if err != nil || s == nil {
		return s, err
	}
	c.invalidate(ctx, id)
	return s, nil
}

func (c *songCache) Delete(ctx context.Context, id string) (*model.Song, error) {
	s, err := c.next.Delete(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	c.invalidate(ctx, id)
	return s, nil
}

// SetAudioURLByCatalogID 按目录ID批量更新，无法得知受影响的键，清空所有歌曲缓存
func (c *songCache) SetAudioURLByCatalogID(ctx context.Context, catalogID, audioURL string) (bool, error) {
	ok, err := c.next.SetAudioURLByCatalogID(ctx, catalogID, audioURL)
	if err != nil {
		return false, err
	}
	if ok {
		if err := c.flush(ctx); err != nil {
			logger.Warn("Failed to flush song cache", logger.ErrorField(err))
		}
	}
	return ok, nil
}

func (c *songCache) ExistsByCatalogID(ctx context.Context, catalogID string) (bool, error) {
	return c.next.ExistsByCatalogID(ctx, catalogID)
}

// flush bumps the generation and removes every songs:* key.
func (c *songCache) flush(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump song cache generation: %w", err)
	}
	iter := c.client.Scan(ctx, 0, songKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan song cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
