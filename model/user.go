package model

// User types.
const (
	UserTypeAdmin = "admin"
	UserTypeUser  = "user"
)

// UserStats holds the listening statistics shown on the profile screen.
type UserStats struct {
	SongsPlayed   int `json:"songsPlayed"`
	HoursListened int `json:"hoursListened"`
	LikedSongs    int `json:"likedSongs"`
	Playlists     int `json:"playlists"`
}

// User represents a demo account. It only exists client side.
type User struct {
	Username string    `json:"username"`
	Password string    `json:"-"` // never serialized
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar"`
	JoinDate string    `json:"joinDate"`
	Stats    UserStats `json:"stats"`
}

// IsAdmin reports whether the user may open the admin screen.
func (u *User) IsAdmin() bool {
	return u != nil && u.Type == UserTypeAdmin
}
