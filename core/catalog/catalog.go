// Package catalog holds the pure list operations behind the songs screen:
// search, genre chips, next/previous and the admin dashboard counters.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"soundwave/model"
)

// AllGenres is the genre chip that matches every song.
const AllGenres = "All"

// SongID is the identity used for playback and list navigation: the store
// key when present, the catalog id otherwise.
func SongID(s *model.Song) string {
	if s == nil {
		return ""
	}
	if s.Key != "" {
		return s.Key
	}
	return s.ID
}

// Filter keeps songs whose title or artist contains query (case-insensitive)
// and whose genre equals genre. Input order is preserved.
func Filter(songs []*model.Song, query, genre string) []*model.Song {
	q := strings.ToLower(query)
	out := make([]*model.Song, 0, len(songs))
	for _, s := range songs {
		if s == nil {
			continue
		}
		matchesQuery := strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Artist), q)
		matchesGenre := genre == "" || genre == AllGenres || s.Genre == genre
		if matchesQuery && matchesGenre {
			out = append(out, s)
		}
	}
	return out
}

// Genres returns "All" followed by the sorted distinct genres.
func Genres(songs []*model.Song) []string {
	seen := make(map[string]struct{})
	var genres []string
	for _, s := range songs {
		if s == nil {
			continue
		}
		if _, ok := seen[s.Genre]; ok {
			continue
		}
		seen[s.Genre] = struct{}{}
		genres = append(genres, s.Genre)
	}
	sort.Strings(genres)
	return append([]string{AllGenres}, genres...)
}

// GenreCount is the badge number on a genre chip.
func GenreCount(songs []*model.Song, genre string) int {
	if genre == AllGenres {
		return len(songs)
	}
	n := 0
	for _, s := range songs {
		if s != nil && s.Genre == genre {
			n++
		}
	}
	return n
}

func indexOf(list []*model.Song, id string) int {
	for i, s := range list {
		if SongID(s) == id {
			return i
		}
	}
	return -1
}

// Next returns the id after currentID, wrapping to the first song.
// It returns "" when list is empty or currentID is not in it.
func Next(list []*model.Song, currentID string) string {
	if currentID == "" || len(list) == 0 {
		return ""
	}
	idx := indexOf(list, currentID)
	if idx < 0 {
		return ""
	}
	return SongID(list[(idx+1)%len(list)])
}

// Previous returns the id before currentID, wrapping to the last song.
func Previous(list []*model.Song, currentID string) string {
	if currentID == "" || len(list) == 0 {
		return ""
	}
	idx := indexOf(list, currentID)
	if idx < 0 {
		return ""
	}
	if idx == 0 {
		return SongID(list[len(list)-1])
	}
	return SongID(list[idx-1])
}

// Find returns the song with the given id, or nil.
func Find(list []*model.Song, id string) *model.Song {
	if i := indexOf(list, id); i >= 0 {
		return list[i]
	}
	return nil
}

// ToggleLike returns a copy of songs with the liked flag of id flipped.
// The input slice and its songs are not modified.
func ToggleLike(songs []*model.Song, id string) []*model.Song {
	out := make([]*model.Song, len(songs))
	for i, s := range songs {
		if SongID(s) == id {
			c := s.Clone()
			c.IsLiked = !c.IsLiked
			out[i] = c
			continue
		}
		out[i] = s
	}
	return out
}

// ResultLabel renders "1 song" / "N songs".
func ResultLabel(n int) string {
	if n == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", n)
}

// Stats are the admin dashboard counters.
type Stats struct {
	Songs   int
	Genres  int
	Artists int
	Liked   int
	NoAudio int
}

// Summarize computes Stats for songs.
func Summarize(songs []*model.Song) Stats {
	genres := make(map[string]struct{})
	artists := make(map[string]struct{})
	st := Stats{}
	for _, s := range songs {
		if s == nil {
			continue
		}
		st.Songs++
		genres[s.Genre] = struct{}{}
		artists[s.Artist] = struct{}{}
		if s.IsLiked {
			st.Liked++
		}
		if s.AudioURL == "" {
			st.NoAudio++
		}
	}
	st.Genres = len(genres)
	st.Artists = len(artists)
	return st
}
