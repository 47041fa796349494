package cmd

import (
	"context"

	"soundwave/cache"
	"soundwave/config"
	"soundwave/db"
	"soundwave/events"
	"soundwave/logger"
	"soundwave/repository"
)

// openSongStore connects the configured store and, when redis is configured
// and reachable, puts the read-through cache in front of it. The returned
// func releases every connection.
func openSongStore(ctx context.Context, cfg *config.Config) (repository.SongRepository, func(), error) {
	var (
		repo    repository.SongRepository
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := db.DisconnectMongo(client); err != nil {
				logger.Warn("Failed to disconnect MongoDB", logger.ErrorField(err))
			}
		})
		repo = repository.NewMongoSongRepository(client.Database(cfg.MongoDB).Collection(db.SongsCollection))
	default:
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := db.CloseGormDB(gdb); err != nil {
				logger.Warn("Failed to close database", logger.ErrorField(err))
			}
		})
		repo = repository.NewGormSongRepository(gdb)
	}

	if cfg.RedisEnabled() {
		client, err := db.ConnectRedis(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, serving without cache", logger.ErrorField(err))
		} else {
			closers = append(closers, func() { _ = client.Close() })
			repo = cache.NewSongCache(repo, client, cfg.CacheTTL)
			logger.Info("Song cache enabled", logger.Duration("ttl", cfg.CacheTTL))
		}
	}

	logger.Info("Song store ready", logger.String("driver", cfg.StoreDriver))
	return repo, cleanup, nil
}

// withSongEvents makes CLI writes publish the same song events as the API.
func withSongEvents(repo repository.SongRepository) (repository.SongRepository, func()) {
	pub := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	return events.NewPublishingRepository(repo, pub), func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Failed to close event publisher", logger.ErrorField(err))
		}
	}
}
