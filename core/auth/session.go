package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"soundwave/logger"
	"soundwave/model"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionKey is the KVStore key holding the signed session token.
const SessionKey = "currentUser"

type sessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Session tracks the logged in user and persists it across restarts.
type Session struct {
	dir    *Directory
	store  KVStore
	secret []byte
	now    func() time.Time

	mu   sync.RWMutex
	user *model.User
}

// NewSession creates a session over the user directory and store.
func NewSession(dir *Directory, store KVStore, secret string) (*Session, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &Session{dir: dir, store: store, secret: []byte(secret), now: time.Now}, nil
}

// Login authenticates and persists the user. Inputs are trimmed.
func (s *Session) Login(username, password string) (*model.User, error) {
	u, err := s.dir.Authenticate(username, password)
	if err != nil {
		logger.Debug("Login rejected", logger.String("username", username))
		return nil, err
	}

	token, err := s.sign(u)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(SessionKey, token); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	logger.Info("User logged in", logger.String("username", u.Username), logger.String("type", u.Type))
	return u, nil
}

// Load restores the user from the store. A missing, invalid or stale token
// yields (nil, nil) and is removed.
func (s *Session) Load() (*model.User, error) {
	token, ok, err := s.store.Get(SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	u, err := s.verify(token)
	if err != nil {
		logger.Warn("Discarding stored session", logger.ErrorField(err))
		if err := s.store.Delete(SessionKey); err != nil {
			return nil, fmt.Errorf("failed to clear session: %w", err)
		}
		return nil, nil
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return u, nil
}

// Logout clears memory and storage.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if err := s.store.Delete(SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns a copy of the logged in user, or nil.
func (s *Session) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin gates the admin screen.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

func (s *Session) sign(u *model.User) (string, error) {
	claims := sessionClaims{
		Type: u.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  u.Username,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

func (s *Session) verify(tokenStr string) (*model.User, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*sessionClaims)
	if c == nil || c.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	u := s.dir.Lookup(c.Subject)
	if u == nil || u.Type != c.Type {
		return nil, fmt.Errorf("unknown user %q", c.Subject)
	}
	return u, nil
}
