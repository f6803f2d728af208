package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/logging"
)

// OutboundWebhook представляет исходящий webhook
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // События, на которые подписан ("*" означает все)
	Active       bool       `json:"active"`
	Timeout      int        `json:"timeout" binding:"gte=0"` // Таймаут в секундах, 0 означает значение по умолчанию
	RetryCount   int        `json:"retry_count" binding:"gte=0"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	FailureCount int        `json:"failure_count"`
}

// OutboundWebhookEvent тело запроса к webhook'у
type OutboundWebhookEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Timestamp int64              `json:"timestamp"`
	ServerID  string             `json:"server_id"`
	Data      eventbus.GameEvent `json:"data"`
}

// OutboundWebhookManager пересылает игровые события из шины во внешние webhook'и
type OutboundWebhookManager struct {
	webhooks   map[uint64]*OutboundWebhook
	mu         sync.RWMutex
	nextID     uint64
	httpClient *http.Client
	serverID   string
	retryDelay time.Duration
	sub        eventbus.Subscription
	wg         sync.WaitGroup
}

// NewOutboundWebhookManager создает новый менеджер исходящих webhook'ов
func NewOutboundWebhookManager(serverID string) *OutboundWebhookManager {
	return &OutboundWebhookManager{
		webhooks:   make(map[uint64]*OutboundWebhook),
		nextID:     1,
		serverID:   serverID,
		retryDelay: time.Second,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Start подписывается на события шины
func (owm *OutboundWebhookManager) Start(ctx context.Context, bus eventbus.EventBus) error {
	sub, err := bus.Subscribe(ctx, eventbus.Filter{}, func(ctx context.Context, env *eventbus.Envelope) {
		owm.processEvent(env)
	})
	if err != nil {
		return err
	}
	owm.sub = sub
	return nil
}

// Stop отписывается от шины и дожидается отправки начатых запросов
func (owm *OutboundWebhookManager) Stop() {
	if owm.sub != nil {
		owm.sub.Unsubscribe()
	}
	owm.wg.Wait()
}

// AddWebhook добавляет новый webhook
func (owm *OutboundWebhookManager) AddWebhook(webhook OutboundWebhook) OutboundWebhook {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	webhook.ID = owm.nextID
	owm.nextID++
	webhook.CreatedAt = time.Now()
	webhook.Active = true

	if webhook.Timeout <= 0 {
		webhook.Timeout = 30
	}
	if webhook.RetryCount <= 0 {
		webhook.RetryCount = 3
	}

	owm.webhooks[webhook.ID] = &webhook
	return webhook
}

// GetWebhooks возвращает копии всех webhook'ов, упорядоченные по ID
func (owm *OutboundWebhookManager) GetWebhooks() []OutboundWebhook {
	owm.mu.RLock()
	defer owm.mu.RUnlock()

	webhooks := make([]OutboundWebhook, 0, len(owm.webhooks))
	for _, webhook := range owm.webhooks {
		webhooks = append(webhooks, *webhook)
	}
	sort.Slice(webhooks, func(i, j int) bool { return webhooks[i].ID < webhooks[j].ID })
	return webhooks
}

// DeleteWebhook удаляет webhook
func (owm *OutboundWebhookManager) DeleteWebhook(id uint64) bool {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	if _, exists := owm.webhooks[id]; !exists {
		return false
	}
	delete(owm.webhooks, id)
	return true
}

// processEvent отправляет событие каждому подписанному webhook'у
func (owm *OutboundWebhookManager) processEvent(env *eventbus.Envelope) {
	data, err := eventbus.DecodeGameEvent(env)
	if err != nil {
		logging.Warn("⚠️ Webhook: не удалось разобрать %s: %v", env.EventType, err)
		return
	}

	event := OutboundWebhookEvent{
		EventID:   env.ID,
		EventType: env.EventType,
		Timestamp: env.Timestamp.Unix(),
		ServerID:  owm.serverID,
		Data:      data,
	}

	owm.mu.RLock()
	var targets []*OutboundWebhook
	for _, webhook := range owm.webhooks {
		if webhook.Active && isSubscribedToEvent(webhook, env.EventType) {
			targets = append(targets, webhook)
		}
	}
	owm.mu.RUnlock()

	for _, webhook := range targets {
		owm.wg.Add(1)
		go func(w *OutboundWebhook) {
			defer owm.wg.Done()
			owm.sendToWebhook(w, event)
		}(webhook)
	}
}

// isSubscribedToEvent проверяет, подписан ли webhook на событие
func isSubscribedToEvent(webhook *OutboundWebhook, eventType string) bool {
	for _, subscribedEvent := range webhook.Events {
		if subscribedEvent == eventType || subscribedEvent == "*" {
			return true
		}
	}
	return false
}

// sendToWebhook отправляет событие конкретному webhook'у с повторами
func (owm *OutboundWebhookManager) sendToWebhook(webhook *OutboundWebhook, event OutboundWebhookEvent) {
	owm.mu.RLock()
	name, url, secret := webhook.Name, webhook.URL, webhook.Secret
	timeout, retries := webhook.Timeout, webhook.RetryCount
	owm.mu.RUnlock()

	jsonData, err := json.Marshal(event)
	if err != nil {
		logging.Error("❌ Ошибка маршалинга события для webhook %s: %v", name, err)
		return
	}

	success := false
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * owm.retryDelay)
		}

		ok, err := owm.post(url, secret, jsonData, event, time.Duration(timeout)*time.Second)
		if err != nil {
			logging.Warn("⚠️ Попытка %d/%d для webhook %s: %v", attempt+1, retries+1, name, err)
			continue
		}
		if ok {
			success = true
			logging.Debug("✅ Событие %s отправлено в webhook %s", event.EventType, name)
			break
		}
	}

	owm.mu.Lock()
	now := time.Now()
	webhook.LastUsed = &now
	if !success {
		webhook.FailureCount++
	}
	owm.mu.Unlock()
}

func (owm *OutboundWebhookManager) post(url, secret string, body []byte, event OutboundWebhookEvent, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ARStack-Server/1.0")
	req.Header.Set("X-Event-Type", event.EventType)
	req.Header.Set("X-Server-ID", event.ServerID)
	if secret != "" {
		req.Header.Set("X-Webhook-Signature", generateSignature(body, secret))
	}

	resp, err := owm.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Warn("⚠️ Webhook %s вернул статус %d", url, resp.StatusCode)
		return false, nil
	}
	return true, nil
}

// generateSignature генерирует HMAC подпись
func generateSignature(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature проверяет заголовок X-Webhook-Signature на стороне получателя
func VerifySignature(body []byte, secret, signature string) bool {
	return hmac.Equal([]byte(generateSignature(body, secret)), []byte(signature))
}

// === ОБРАБОТЧИКИ ИСХОДЯЩИХ WEBHOOK'ОВ ===

func (rs *RestServer) handleGetOutboundWebhooks(c *gin.Context) {
	if rs.webhooks == nil {
		respondError(c, http.StatusNotFound, "Webhook'и отключены")
		return
	}
	webhooks := rs.webhooks.GetWebhooks()
	respondOK(c, http.StatusOK, "Список webhook'ов получен", gin.H{
		"webhooks": webhooks,
		"total":    len(webhooks),
	})
}

func (rs *RestServer) handleCreateOutboundWebhook(c *gin.Context) {
	if rs.webhooks == nil {
		respondError(c, http.StatusNotFound, "Webhook'и отключены")
		return
	}

	var webhook OutboundWebhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат webhook'а: "+err.Error())
		return
	}
	if len(webhook.Events) == 0 {
		respondError(c, http.StatusBadRequest, "Обязательные поля: name, url, events")
		return
	}

	respondOK(c, http.StatusCreated, "Webhook создан успешно", rs.webhooks.AddWebhook(webhook))
}

func (rs *RestServer) handleDeleteOutboundWebhook(c *gin.Context) {
	if rs.webhooks == nil {
		respondError(c, http.StatusNotFound, "Webhook'и отключены")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Неверный ID webhook'а")
		return
	}
	if !rs.webhooks.DeleteWebhook(id) {
		respondError(c, http.StatusNotFound, "Webhook не найден")
		return
	}
	respondOK(c, http.StatusOK, "Webhook удалён", nil)
}
