package game

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixGame   = "game"
	PrefixReplay = "replay"
)

func newID(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

// NewSessionID генерирует идентификатор сессии вида game_01h...
func NewSessionID() string { return newID(PrefixGame) }

// NewReplayID генерирует идентификатор записи партии
func NewReplayID() string { return newID(PrefixReplay) }

// ValidateID проверяет формат идентификатора и его префикс
func ValidateID(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
