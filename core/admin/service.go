package admin

import (
	"context"
	"errors"
	"time"

	"soundwave/core/api"
	"soundwave/logger"
	"soundwave/model"
)

// SongAPI is the part of the REST client the admin screen uses.
type SongAPI interface {
	ListSongs(ctx context.Context) ([]*model.Song, error)
	CreateSong(ctx context.Context, song *model.Song) (*model.Song, error)
	UpdateSong(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error)
	DeleteSong(ctx context.Context, id string) error
}

// UserError carries the alert text for a failed admin action.
type UserError struct {
	Op  api.Op
	Err error
}

func (e *UserError) Error() string { return api.UserMessage(e.Op, e.Err) }
func (e *UserError) Unwrap() error { return e.Err }

// Service runs the admin actions against the API.
type Service struct {
	api SongAPI
	now func() time.Time
}

func NewService(client SongAPI) *Service {
	return &Service{api: client, now: time.Now}
}

// Refresh lists every song.
func (s *Service) Refresh(ctx context.Context) ([]*model.Song, error) {
	songs, err := s.api.ListSongs(ctx)
	if err != nil {
		logger.Warn("Failed to fetch songs", logger.ErrorField(err))
		return []*model.Song{}, &UserError{Op: api.OpFetch, Err: err}
	}
	return songs, nil
}

// Save creates a song, or updates editing when it is non-nil.
// Validation failures return ErrMissingFields without calling the API.
func (s *Service) Save(ctx context.Context, form SongForm, editing *model.Song) (*model.Song, error) {
	body, err := form.Build(editing != nil, s.now())
	if err != nil {
		return nil, err
	}

	var saved *model.Song
	if editing == nil {
		saved, err = s.api.CreateSong(ctx, body)
	} else {
		saved, err = s.api.UpdateSong(ctx, editing.Key, patchFrom(body))
	}
	if err != nil {
		logger.Warn("Failed to save song", logger.String("title", body.Title), logger.ErrorField(err))
		return nil, &UserError{Op: api.OpSave, Err: err}
	}
	return saved, nil
}

// Delete removes a song by store key.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.api.DeleteSong(ctx, key); err != nil {
		logger.Warn("Failed to delete song", logger.String("songId", key), logger.ErrorField(err))
		return &UserError{Op: api.OpDelete, Err: err}
	}
	return nil
}

// ToggleLike flips the liked flag on the server.
func (s *Service) ToggleLike(ctx context.Context, song *model.Song) (*model.Song, error) {
	liked := !song.IsLiked
	updated, err := s.api.UpdateSong(ctx, song.Key, &model.SongPatch{IsLiked: &liked})
	if err != nil {
		return nil, &UserError{Op: api.OpLike, Err: err}
	}
	return updated, nil
}

// IsMissingFields reports a validation failure from Save.
func IsMissingFields(err error) bool {
	return errors.Is(err, ErrMissingFields)
}
