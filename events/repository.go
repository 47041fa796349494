package events

import (
	"context"

	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"
)

// publishingRepository publishes a song event after every successful write.
// Publish failures are logged and never fail the write.
type publishingRepository struct {
	repository.SongRepository
	pub Publisher
}

// NewPublishingRepository wraps repo so Create, Update and Delete emit song
// events. The HTTP handlers publish on their own and do not use it.
func NewPublishingRepository(repo repository.SongRepository, pub Publisher) repository.SongRepository {
	return &publishingRepository{SongRepository: repo, pub: pub}
}

func (r *publishingRepository) emit(ctx context.Context, kind string, song *model.Song) {
	if err := r.pub.Publish(ctx, NewSongEvent(kind, song)); err != nil {
		logger.Warn("Failed to publish song event",
			logger.String("type", kind),
			logger.String("songId", song.Key),
			logger.ErrorField(err))
	}
}

func (r *publishingRepository) Create(ctx context.Context, song *model.Song) (*model.Song, error) {
	s, err := r.SongRepository.Create(ctx, song)
	if err != nil {
		return nil, err
	}
	r.emit(ctx, model.SongCreated, s)
	return s, nil
}

func (r *publishingRepository) Update(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error) {
	s, err := r.SongRepository.Update(ctx, id, patch)
	if err != nil || s == nil {
		return s, err
	}
	r.emit(ctx, model.SongUpdated, s)
	return s, nil
}

func (r *publishingRepository) Delete(ctx context.Context, id string) (*model.Song, error) {
	s, err := r.SongRepository.Delete(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	r.emit(ctx, model.SongDeleted, s)
	return s, nil
}
