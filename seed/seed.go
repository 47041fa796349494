// Package seed loads the demo catalog into a song store.
package seed

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"soundwave/logger"
	"soundwave/repository"
)

// Result counts what Seed did.
type Result struct {
	Deleted  int
	Inserted int
	Skipped  int
}

// Seed inserts the demo songs whose catalog id is not present yet. With
// reset, every existing song is deleted first.
func Seed(ctx context.Context, repo repository.SongRepository, reset bool) (Result, error) {
	var res Result
	if reset {
		existing, err := repo.List(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to list songs: %w", err)
		}
		for _, s := range existing {
			if _, err := repo.Delete(ctx, s.Key); err != nil {
				return res, fmt.Errorf("failed to delete song %s: %w", s.Key, err)
			}
			res.Deleted++
		}
	}

	for _, s := range Songs() {
		exists, err := repo.ExistsByCatalogID(ctx, s.ID)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if _, err := repo.Create(ctx, s); err != nil {
			return res, fmt.Errorf("failed to insert %q: %w", s.Title, err)
		}
		res.Inserted++
	}

	logger.Info("Seeded songs",
		logger.Int("deleted", res.Deleted),
		logger.Int("inserted", res.Inserted),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

// ApplyAudioURLs sets the demo audio url on every catalog id in urls and
// returns the ids that matched no song.
func ApplyAudioURLs(ctx context.Context, repo repository.SongRepository, urls map[string]string) ([]string, error) {
	ids := make([]string, 0, len(urls))
	for id := range urls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})

	var missing []string
	for _, id := range ids {
		logger.Info("Updating song", logger.String("catalogId", id))
		ok, err := repo.SetAudioURLByCatalogID(ctx, id, urls[id])
		if err != nil {
			return missing, err
		}
		if !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
