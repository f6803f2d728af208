package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/api"
	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/logging"
)

func main() {
	addr := flag.String("addr", ":3000", "адрес приёмника")
	secret := flag.String("secret", "", "секрет webhook'а для проверки подписи")
	flag.Parse()

	logging.SetLogDir("")
	if err := logging.InitDefaultLogger("webhook-receiver"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🔗 Запуск тестового Webhook приемника...")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Webhook приемник запущен",
			"endpoints":   []string{"/webhook"},
			"server_time": time.Now().Unix(),
		})
	})
	r.POST("/webhook", newHandler(*secret))

	logging.Info("✅ Webhook приемник запущен на %s", *addr)
	logging.Info("   POST /webhook — игровые события ARStack")
	if *secret == "" {
		logging.Warn("⚠️ Секрет не задан, подпись не проверяется")
	}

	if err := r.Run(*addr); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// newHandler принимает событие, проверяет подпись и пишет его в лог
func newHandler(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logging.Error("❌ Ошибка чтения тела запроса: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка чтения запроса"})
			return
		}

		if secret != "" && !api.VerifySignature(body, secret, c.GetHeader("X-Webhook-Signature")) {
			logging.Warn("🚨 Неверная подпись от %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверная подпись"})
			return
		}

		var event api.OutboundWebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			logging.Error("❌ Ошибка парсинга JSON: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный JSON"})
			return
		}

		logEvent(event)

		c.JSON(http.StatusOK, gin.H{
			"status":      "received",
			"event_type":  event.EventType,
			"received_at": time.Now().Unix(),
		})
	}
}

func logEvent(event api.OutboundWebhookEvent) {
	d := event.Data
	at := time.Unix(event.Timestamp, 0).Format("15:04:05")

	switch event.EventType {
	case eventbus.EventGameStarted:
		logging.Info("🎮 [%s] %s: новая партия %s", at, event.ServerID, d.SessionID)
	case eventbus.EventBlockPlaced:
		logging.Info("🧱 [%s] %s: блок на высоте %d, счёт %d (идеально: %v)", at, d.SessionID, d.Height, d.Score, d.Perfect)
	case eventbus.EventGameOver:
		logging.Info("🏁 [%s] %s: партия окончена на высоте %d, рекорд %d", at, d.SessionID, d.FinalHeight, d.HighScore)
	case eventbus.EventHighScoreBeaten:
		logging.Info("🏆 [%s] %s: новый рекорд %d", at, d.SessionID, d.HighScore)
	case eventbus.EventGameReset:
		logging.Info("🔄 [%s] %s: партия начата заново", at, d.SessionID)
	default:
		logging.Info("ℹ️  Неизвестное событие: %s", event.EventType)
	}
}
