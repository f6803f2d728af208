package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arstack/internal/api"
	"github.com/annel0/arstack/internal/eventbus"
)

func newRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", newHandler(secret))
	return r
}

func post(r http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// sign повторяет подпись, которую ставит сервер
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestReceiver_AcceptsSignedEvent(t *testing.T) {
	body, err := json.Marshal(api.OutboundWebhookEvent{
		EventType: eventbus.EventGameOver,
		Data:      eventbus.GameEvent{SessionID: "game_x", FinalHeight: 3},
	})
	require.NoError(t, err)

	r := newRouter("k")
	assert.Equal(t, http.StatusOK, post(r, body, sign(body, "k")).Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, body, "sha256=00").Code)
}

func TestReceiver_NoSecretSkipsVerification(t *testing.T) {
	r := newRouter("")
	assert.Equal(t, http.StatusOK, post(r, []byte(`{"event_type":"custom"}`), "").Code)
	assert.Equal(t, http.StatusBadRequest, post(r, []byte(`{`), "").Code)
}
