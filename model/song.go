package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Lyrics is an ordered list of lyric lines. It implements sql.Scanner and
// driver.Valuer so GORM stores it as a JSON text column.
type Lyrics []string

// Scan 实现 sql.Scanner 接口
func (l *Lyrics) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = nil
		return nil
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value 实现 driver.Valuer 接口
func (l Lyrics) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON renders a missing lyrics list as [].
func (l Lyrics) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Song is a catalog entry with playback metadata and an audio source URL.
// Key is the store-assigned document key used in API routes; ID is the free
// catalog id carried over from the seed data and the admin form.
type Song struct {
	Key       string    `json:"_id" bson:"_id,omitempty" gorm:"column:uid;primaryKey;size:64"`
	ID        string    `json:"id" bson:"id" gorm:"column:catalog_id;size:64;index"`
	Title     string    `json:"title" bson:"title" gorm:"size:255"`
	Artist    string    `json:"artist" bson:"artist" gorm:"size:255"`
	Album     string    `json:"album" bson:"album" gorm:"size:255"`
	Duration  string    `json:"duration" bson:"duration" gorm:"size:16"` // display string, m:ss
	Image     string    `json:"image" bson:"image" gorm:"size:1024"`
	Genre     string    `json:"genre" bson:"genre" gorm:"size:100;index"`
	IsLiked   bool      `json:"isLiked" bson:"isLiked" gorm:"column:is_liked"`
	Lyrics    Lyrics    `json:"lyrics" bson:"lyrics" gorm:"type:text"`
	AudioURL  string    `json:"audioUrl" bson:"audioUrl" gorm:"column:audio_url;size:1024"`
	CreatedAt time.Time `json:"-" bson:"-"`
	UpdatedAt time.Time `json:"-" bson:"-"`
}

// TableName 指定表名
func (Song) TableName() string {
	return "songs"
}

// Clone returns a deep copy.
func (s *Song) Clone() *Song {
	if s == nil {
		return nil
	}
	c := *s
	if s.Lyrics != nil {
		c.Lyrics = append(Lyrics(nil), s.Lyrics...)
	}
	return &c
}

// SongPatch is a partial update. Nil fields are left untouched.
type SongPatch struct {
	ID       *string   `json:"id,omitempty"`
	Title    *string   `json:"title,omitempty"`
	Artist   *string   `json:"artist,omitempty"`
	Album    *string   `json:"album,omitempty"`
	Duration *string   `json:"duration,omitempty"`
	Image    *string   `json:"image,omitempty"`
	Genre    *string   `json:"genre,omitempty"`
	IsLiked  *bool     `json:"isLiked,omitempty"`
	Lyrics   *[]string `json:"lyrics,omitempty"`
	AudioURL *string   `json:"audioUrl,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *SongPatch) IsEmpty() bool {
	return p == nil || (p.ID == nil && p.Title == nil && p.Artist == nil && p.Album == nil &&
		p.Duration == nil && p.Image == nil && p.Genre == nil && p.IsLiked == nil &&
		p.Lyrics == nil && p.AudioURL == nil)
}

// Apply writes the present fields onto s.
func (p *SongPatch) Apply(s *Song) {
	if p == nil || s == nil {
		return
	}
	if p.ID != nil {
		s.ID = *p.ID
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Album != nil {
		s.Album = *p.Album
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Image != nil {
		s.Image = *p.Image
	}
	if p.Genre != nil {
		s.Genre = *p.Genre
	}
	if p.IsLiked != nil {
		s.IsLiked = *p.IsLiked
	}
	if p.Lyrics != nil {
		s.Lyrics = append(Lyrics{}, (*p.Lyrics)...)
	}
	if p.AudioURL != nil {
		s.AudioURL = *p.AudioURL
	}
}

// Fields returns the present fields keyed by their JSON/bson name.
func (p *SongPatch) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	if p == nil {
		return out
	}
	if p.ID != nil {
		out["id"] = *p.ID
	}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Artist != nil {
		out["artist"] = *p.Artist
	}
	if p.Album != nil {
		out["album"] = *p.Album
	}
	if p.Duration != nil {
		out["duration"] = *p.Duration
	}
	if p.Image != nil {
		out["image"] = *p.Image
	}
	if p.Genre != nil {
		out["genre"] = *p.Genre
	}
	if p.IsLiked != nil {
		out["isLiked"] = *p.IsLiked
	}
	if p.Lyrics != nil {
		out["lyrics"] = append([]string{}, (*p.Lyrics)...)
	}
	if p.AudioURL != nil {
		out["audioUrl"] = *p.AudioURL
	}
	return out
}

// SongEvent is published after a successful catalog write.
type SongEvent struct {
	Type   string    `json:"type"` // created, updated, deleted
	SongID string    `json:"songId"`
	Song   *Song     `json:"song,omitempty"`
	At     time.Time `json:"at"`
}

const (
	SongCreated = "created"
	SongUpdated = "updated"
	SongDeleted = "deleted"
)
