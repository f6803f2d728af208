package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/auth"
	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/replay"
)

// TokenRequest запрос токена игрока
type TokenRequest struct {
	Player        string `json:"player" binding:"required"`
	AdminPassword string `json:"admin_password,omitempty"`
}

// TokenResponse ответ с токеном
type TokenResponse struct {
	Token   string `json:"token"`
	Player  string `json:"player"`
	IsAdmin bool   `json:"is_admin"`
}

// handleToken выдаёт токен игрока; с верным паролем администратора: токен админа
func (rs *RestServer) handleToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	player, err := auth.NormalizePlayerName(req.Player)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Недопустимое имя игрока")
		return
	}

	isAdmin := false
	if req.AdminPassword != "" {
		if !rs.admin.Check(req.AdminPassword) {
			respondError(c, http.StatusUnauthorized, "Неверный пароль администратора")
			return
		}
		isAdmin = true
	}

	token, err := rs.issuer.Issue(player, isAdmin)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Ошибка генерации токена")
		return
	}

	respondOK(c, http.StatusOK, "Успешная авторизация", TokenResponse{
		Token:   token,
		Player:  player,
		IsAdmin: isAdmin,
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := gin.H{
		"version":      Version,
		"name":         "ARStack Server",
		"status":       "running",
		"uptime":       rs.metrics.GetUptime(),
		"memory_mb":    memoryMB,
		"cpu_percent":  cpuPercent,
		"sessions":     rs.manager.Count(),
		"high_score":   rs.tracker.CurrentHighScore(),
		"memory_stats": rs.metrics.GetDetailedMemoryStats(),
	}
	if rs.bus != nil {
		info["eventbus"] = rs.bus.Metrics()
	}

	respondOK(c, http.StatusOK, "Информация о сервере", info)
}

// handleHighScore возвращает текущий рекорд
func (rs *RestServer) handleHighScore(c *gin.Context) {
	respondOK(c, http.StatusOK, "Рекорд", gin.H{
		"high_score": rs.tracker.CurrentHighScore(),
	})
}

// handleResetHighScore обнуляет рекорд (только для админов)
func (rs *RestServer) handleResetHighScore(c *gin.Context) {
	if err := rs.tracker.Reset(c.Request.Context()); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Не удалось сбросить рекорд")
		return
	}
	respondOK(c, http.StatusOK, "Рекорд сброшен", gin.H{"high_score": 0})
}

// handleCue отдаёт синтезированный сигнал в формате WAV
func (rs *RestServer) handleCue(c *gin.Context) {
	if rs.synth == nil {
		respondError(c, http.StatusNotFound, "Звук отключён")
		return
	}

	name, err := cue.ParseCue(c.Param("name"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Неизвестный сигнал")
		return
	}

	data, err := rs.synth.WAV(name)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Ошибка синтеза")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/wav", data)
}

// ReplayResponse запись партии с результатом проверки
type ReplayResponse struct {
	Replay   replay.Replay `json:"replay"`
	Verified bool          `json:"verified"`
	Result   replay.Result `json:"result"`
}

// handleGetReplay возвращает запись партии и проверяет её воспроизведением
func (rs *RestServer) handleGetReplay(c *gin.Context) {
	if rs.replays == nil {
		respondError(c, http.StatusNotFound, "Запись партий отключена")
		return
	}

	r, err := rs.replays.Load(c.Request.Context(), c.Param("id"))
	if errors.Is(err, replay.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Запись не найдена")
		return
	}
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Ошибка чтения записи")
		return
	}

	res, verr := replay.Verify(r)
	respondOK(c, http.StatusOK, "Запись партии", ReplayResponse{
		Replay:   r,
		Verified: verr == nil,
		Result:   res,
	})
}

// handleListReplays возвращает последние записи
func (rs *RestServer) handleListReplays(c *gin.Context) {
	if rs.replays == nil {
		respondError(c, http.StatusNotFound, "Запись партий отключена")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, err := rs.replays.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Ошибка чтения записей")
		return
	}

	respondOK(c, http.StatusOK, "Записи партий", gin.H{
		"replays": list,
		"total":   len(list),
	})
}
