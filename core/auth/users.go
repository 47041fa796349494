package auth

import (
	"errors"
	"fmt"
	"strings"

	"soundwave/model"
)

// ErrInvalidCredentials is returned for any username/password pair that is
// not one of the demo accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

const avatarURL = "https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=400"

func avatar(n int) string {
	return fmt.Sprintf(avatarURL, n, n)
}

// DemoUsers returns the built-in accounts with their plain passwords.
func DemoUsers() []model.User {
	return []model.User{
		{
			Username: "admin",
			Password: "admin123",
			Type:     model.UserTypeAdmin,
			Name:     "Admin User",
			Email:    "admin@soundwave.com",
			Avatar:   avatar(2379004),
			JoinDate: "January 2023",
			Stats:    model.UserStats{SongsPlayed: 2847, HoursListened: 312, LikedSongs: 156, Playlists: 24},
		},
		{
			Username: "user",
			Password: "user123",
			Type:     model.UserTypeUser,
			Name:     "John Doe",
			Email:    "john.doe@example.com",
			Avatar:   avatar(220453),
			JoinDate: "March 2024",
			Stats:    model.UserStats{SongsPlayed: 1247, HoursListened: 156, LikedSongs: 89, Playlists: 12},
		},
		{
			Username: "demo",
			Password: "demo123",
			Type:     model.UserTypeUser,
			Name:     "Demo User",
			Email:    "demo@example.com",
			Avatar:   avatar(1239291),
			JoinDate: "December 2024",
			Stats:    model.UserStats{SongsPlayed: 567, HoursListened: 78, LikedSongs: 45, Playlists: 8},
		},
	}
}

// Directory is the fixed user table. Passwords are kept only as bcrypt hashes.
type Directory struct {
	users map[string]model.User
}

// NewDirectory hashes the given accounts. The returned users never carry a
// plain password.
func NewDirectory(users []model.User) (*Directory, error) {
	d := &Directory{users: make(map[string]model.User, len(users))}
	for _, u := range users {
		hash, err := HashPassword(u.Password)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Username, err)
		}
		u.Password = hash
		d.users[u.Username] = u
	}
	return d, nil
}

// NewDemoDirectory builds the directory of the three demo accounts.
func NewDemoDirectory() (*Directory, error) {
	return NewDirectory(DemoUsers())
}

// Authenticate checks a username/password pair. Both are trimmed first.
func (d *Directory) Authenticate(username, password string) (*model.User, error) {
	u := d.users[strings.TrimSpace(username)]
	if !CheckPasswordHash(strings.TrimSpace(password), u.Password) {
		return nil, ErrInvalidCredentials
	}
	return profile(u), nil
}

// Lookup returns the profile for username, or nil.
func (d *Directory) Lookup(username string) *model.User {
	u, ok := d.users[username]
	if !ok {
		return nil
	}
	return profile(u)
}

func profile(u model.User) *model.User {
	u.Password = ""
	return &u
}
