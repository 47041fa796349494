package repository

import (
	"context"
	"errors"
	"fmt"

	"soundwave/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SongRepository defines the data operations on the songs collection.
// Lookups of a missing document return (nil, nil).
type SongRepository interface {
	List(ctx context.Context) ([]*model.Song, error)
	GetByID(ctx context.Context, id string) (*model.Song, error)
	Create(ctx context.Context, song *model.Song) (*model.Song, error)
	Update(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error)
	Delete(ctx context.Context, id string) (*model.Song, error)

	// SetAudioURLByCatalogID is used by the audio-urls maintenance command.
	SetAudioURLByCatalogID(ctx context.Context, catalogID, audioURL string) (bool, error)
	// ExistsByCatalogID is used by the seeder to skip already present songs.
	ExistsByCatalogID(ctx context.Context, catalogID string) (bool, error)
}

// gormSongRepository GORM 实现 (mysql / postgres / sqlite)
type gormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository creates a song repository backed by gorm.
func NewGormSongRepository(db *gorm.DB) SongRepository {
	return &gormSongRepository{db: db}
}

// List returns every song in insertion order.
func (r *gormSongRepository) List(ctx context.Context) ([]*model.Song, error) {
	songs := make([]*model.Song, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("uid ASC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// GetByID returns the song with the given key.
func (r *gormSongRepository) GetByID(ctx context.Context, id string) (*model.Song, error) {
	var song model.Song
	err := r.db.WithContext(ctx).Where("uid = ?", id).First(&song).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get song %s: %w", id, err)
	}
	return &song, nil
}

// Create inserts a song and assigns its key.
func (r *gormSongRepository) Create(ctx context.Context, song *model.Song) (*model.Song, error) {
	row := song.Clone()
	row.Key = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create song: %w", err)
	}
	return row, nil
}

// Update applies a partial update and returns the updated song.
func (r *gormSongRepository) Update(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error) {
	var updated *model.Song
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var song model.Song
		if err := tx.Where("uid = ?", id).First(&song).Error; err != nil {
			return err
		}
		patch.Apply(&song)
		if err := tx.Save(&song).Error; err != nil {
			return err
		}
		updated = &song
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update song %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a song and returns what was deleted.
func (r *gormSongRepository) Delete(ctx context.Context, id string) (*model.Song, error) {
	song, err := r.GetByID(ctx, id)
	if err != nil || song == nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Where("uid = ?", id).Delete(&model.Song{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete song %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return song, nil
}

func (r *gormSongRepository) SetAudioURLByCatalogID(ctx context.Context, catalogID, audioURL string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Song{}).
		Where("catalog_id = ?", catalogID).
		Update("audio_url", audioURL)
	if res.Error != nil {
		return false, fmt.Errorf("failed to set audio url for catalog id %s: %w", catalogID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormSongRepository) ExistsByCatalogID(ctx context.Context, catalogID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Song{}).Where("catalog_id = ?", catalogID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count songs with catalog id %s: %w", catalogID, err)
	}
	return count > 0, nil
}
