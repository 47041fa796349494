package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"soundwave/model"
)

// ErrMissingFields is returned when a required form field is empty.
var ErrMissingFields = errors.New("Please fill in all required fields")

// SongForm is the add/edit song form. Lyrics are edited as one text block,
// one line per lyric line.
type SongForm struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	Duration   string
	Image      string
	Genre      string
	AudioURL   string
	IsLiked    *bool
	LyricsText string
}

// FormFromSong pre-fills the form for editing.
func FormFromSong(s *model.Song) SongForm {
	liked := s.IsLiked
	return SongForm{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		Duration:   s.Duration,
		Image:      s.Image,
		Genre:      s.Genre,
		AudioURL:   s.AudioURL,
		IsLiked:    &liked,
		LyricsText: strings.Join(s.Lyrics, "\n"),
	}
}

// Missing lists the empty required fields by their JSON name.
func (f SongForm) Missing() []string {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"title", f.Title},
		{"artist", f.Artist},
		{"album", f.Album},
		{"duration", f.Duration},
		{"genre", f.Genre},
		{"audioUrl", f.AudioURL},
		{"image", f.Image},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// ParseLyrics splits text on newlines, trims each line and drops empty ones.
func ParseLyrics(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Build validates the form and produces the song body to send. When creating
// and no catalog id was entered, the id is now in unix milliseconds.
func (f SongForm) Build(editing bool, now time.Time) (*model.Song, error) {
	if len(f.Missing()) > 0 {
		return nil, ErrMissingFields
	}
	s := &model.Song{
		ID:       f.ID,
		Title:    f.Title,
		Artist:   f.Artist,
		Album:    f.Album,
		Duration: f.Duration,
		Image:    f.Image,
		Genre:    f.Genre,
		AudioURL: f.AudioURL,
		Lyrics:   ParseLyrics(f.LyricsText),
	}
	if f.IsLiked != nil {
		s.IsLiked = *f.IsLiked
	}
	if !editing && s.ID == "" {
		s.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return s, nil
}

// patchFrom sends every form field on edit.
func patchFrom(s *model.Song) *model.SongPatch {
	lyrics := []string(s.Lyrics)
	return &model.SongPatch{
		ID:       &s.ID,
		Title:    &s.Title,
		Artist:   &s.Artist,
		Album:    &s.Album,
		Duration: &s.Duration,
		Image:    &s.Image,
		Genre:    &s.Genre,
		IsLiked:  &s.IsLiked,
		Lyrics:   &lyrics,
		AudioURL: &s.AudioURL,
	}
}
