package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the password using DefaultCost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// AdminGuard проверяет пароль администратора по bcrypt-хешу из конфигурации.
// Пустой хеш отключает административные операции.
type AdminGuard struct {
	hash string
}

func NewAdminGuard(hash string) *AdminGuard {
	return &AdminGuard{hash: hash}
}

// Enabled возвращает true, если хеш задан
func (g *AdminGuard) Enabled() bool {
	return g != nil && g.hash != ""
}

// Check compares the configured hash with the plaintext password.
func (g *AdminGuard) Check(password string) bool {
	if !g.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(password)) == nil
}
