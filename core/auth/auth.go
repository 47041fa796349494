package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is lowered in tests.
var hashCost = bcrypt.DefaultCost

var (
	unknownOnce sync.Once
	unknownHash []byte
)

// unknownUserHash is compared against when the username does not exist. It is
// built lazily at hashCost so a miss costs the same as a wrong password.
func unknownUserHash() []byte {
	unknownOnce.Do(func() {
		unknownHash, _ = bcrypt.GenerateFromPassword([]byte("soundwave"), hashCost)
	})
	return unknownHash
}

// HashPassword 生成密码的 bcrypt 哈希
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password with a bcrypt hash. An empty hash
// never matches.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(unknownUserHash(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
