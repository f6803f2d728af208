package eventbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBusClosed возвращается при публикации в закрытую шину
var ErrBusClosed = errors.New("eventbus: шина закрыта")

// Типы игровых событий
const (
	EventGameStarted     = "GameStarted"
	EventBlockPlaced     = "BlockPlaced"
	EventGameOver        = "GameOver"
	EventHighScoreBeaten = "HighScoreBeaten"
	EventGameReset       = "GameReset"
)

// PayloadVersion текущая версия схемы GameEvent
const PayloadVersion = 1

// GameEvent полезная нагрузка всех игровых событий
type GameEvent struct {
	SessionID   string  `json:"session_id"`
	Height      int     `json:"height"`
	Score       int     `json:"score,omitempty"`
	Perfect     bool    `json:"perfect,omitempty"`
	Bonus       bool    `json:"bonus,omitempty"`
	Axis        string  `json:"axis,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Depth       float64 `json:"depth,omitempty"`
	FinalHeight int     `json:"final_height,omitempty"`
	HighScore   int     `json:"high_score,omitempty"`
	NewRecord   bool    `json:"new_record,omitempty"`
}

// priorityOf окончание партии и рекорды нельзя терять при переполнении
func priorityOf(eventType string) int {
	switch eventType {
	case EventGameOver, EventHighScoreBeaten:
		return 7
	case EventGameStarted, EventGameReset:
		return 5
	default:
		return 3
	}
}

// NewGameEnvelope упаковывает GameEvent в Envelope
func NewGameEnvelope(source, eventType string, ev GameEvent) (*Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}

	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     eventType,
		Version:       PayloadVersion,
		CorrelationID: ev.SessionID,
		Priority:      priorityOf(eventType),
		Payload:       payload,
	}, nil
}

// DecodeGameEvent извлекает GameEvent из Envelope
func DecodeGameEvent(env *Envelope) (GameEvent, error) {
	var ev GameEvent
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return GameEvent{}, fmt.Errorf("unmarshal %s: %w", env.EventType, err)
	}
	return ev, nil
}
