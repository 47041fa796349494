package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSongPatch_ApplyOnlyPresentFields(t *testing.T) {
	s := &Song{Key: "k1", ID: "1", Title: "Midnight Dreams", Artist: "Luna Eclipse", IsLiked: true}
	liked := false
	lyrics := []string{"line one", "line two"}
	p := &SongPatch{Title: strPtr("Midnight Dreams (Remix)"), IsLiked: &liked, Lyrics: &lyrics}

	p.Apply(s)

	assert.Equal(t, "k1", s.Key)
	assert.Equal(t, "Midnight Dreams (Remix)", s.Title)
	assert.Equal(t, "Luna Eclipse", s.Artist)
	assert.False(t, s.IsLiked)
	assert.Equal(t, Lyrics{"line one", "line two"}, s.Lyrics)

	lyrics[0] = "mutated"
	assert.Equal(t, "line one", s.Lyrics[0], "patch lyrics must be copied")
}

func TestSongPatch_DecodeAndFields(t *testing.T) {
	var p SongPatch
	require.NoError(t, json.Unmarshal([]byte(`{"isLiked":true,"audioUrl":"https://a/b.mp3"}`), &p))

	assert.False(t, p.IsEmpty())
	assert.Equal(t, map[string]interface{}{"isLiked": true, "audioUrl": "https://a/b.mp3"}, p.Fields())
	assert.True(t, (&SongPatch{}).IsEmpty())
}

func TestSongJSON_UsesWireNames(t *testing.T) {
	s := Song{Key: "abc", ID: "7", Title: "Forest Whispers", IsLiked: true, AudioURL: "u"}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "abc", m["_id"])
	assert.Equal(t, "7", m["id"])
	assert.Equal(t, true, m["isLiked"])
	assert.Equal(t, "u", m["audioUrl"])
	assert.Equal(t, []interface{}{}, m["lyrics"])
	assert.NotContains(t, m, "CreatedAt")
}

func TestLyrics_ScanValue(t *testing.T) {
	v, err := Lyrics{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var l Lyrics
	require.NoError(t, l.Scan([]byte(`["x"]`)))
	assert.Equal(t, Lyrics{"x"}, l)
	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	empty, err := Lyrics(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestUserPasswordNotSerialized(t *testing.T) {
	b, err := json.Marshal(User{Username: "admin", Password: "admin123", Type: UserTypeAdmin})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "admin123")
	assert.True(t, (&User{Type: UserTypeAdmin}).IsAdmin())
	assert.False(t, (*User)(nil).IsAdmin())
}
