package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// StreamMessage сообщение websocket-потока
type StreamMessage struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Event     eventbus.GameEvent `json:"event"`
}

// handleStream транслирует события сессии по websocket
func (rs *RestServer) handleStream(c *gin.Context, s *game.Session) {
	if rs.bus == nil {
		respondError(c, http.StatusNotFound, "Шина событий отключена")
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS открыт, как и для REST
	})
	if err != nil {
		logging.Warn("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Клиент ничего не присылает: CloseRead отменит контекст при закрытии
	ctx := conn.CloseRead(c.Request.Context())

	send := make(chan []byte, sendBuffer)
	sub, err := rs.bus.Subscribe(ctx, eventbus.Filter{Correlations: []string{s.ID}}, func(_ context.Context, env *eventbus.Envelope) {
		ev, err := eventbus.DecodeGameEvent(env)
		if err != nil {
			return
		}
		data, err := json.Marshal(StreamMessage{Type: env.EventType, Timestamp: env.Timestamp, Event: ev})
		if err != nil {
			return
		}
		select {
		case send <- data:
		default:
			// Медленный клиент: пропускаем событие, чтобы не тормозить шину
		}
	})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer sub.Unsubscribe()

	writePump(ctx, conn, send)
}

func writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
