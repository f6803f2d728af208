package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/stack"
)

// TickRequest продвижение на несколько кадров
type TickRequest struct {
	Frames int `json:"frames" binding:"required"`
}

// handleCreateGame открывает новую сессию игрока
func (rs *RestServer) handleCreateGame(c *gin.Context) {
	claims := claimsFrom(c)

	s, err := rs.manager.Create(c.Request.Context(), claims.Player)
	if errors.Is(err, game.ErrSessionLimit) {
		respondError(c, http.StatusServiceUnavailable, "Сервер перегружен, попробуйте позже")
		return
	}
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Не удалось создать партию")
		return
	}

	respondOK(c, http.StatusCreated, "Партия создана", s.Snapshot())
}

func (rs *RestServer) handleGetGame(c *gin.Context, s *game.Session) {
	respondOK(c, http.StatusOK, "Состояние партии", s.Snapshot())
}

func (rs *RestServer) handleTick(c *gin.Context, s *game.Session) {
	var req TickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	view, err := s.Tick(c.Request.Context(), req.Frames)
	switch {
	case errors.Is(err, game.ErrInvalidFrames), errors.Is(err, game.ErrTooManyFrames):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Ошибка обновления")
		return
	}

	respondOK(c, http.StatusOK, "Кадры применены", view)
}

func (rs *RestServer) handleTap(c *gin.Context, s *game.Session) {
	res, err := s.Tap(c.Request.Context())
	switch {
	case errors.Is(err, stack.ErrGameOver):
		respondError(c, http.StatusConflict, "Партия окончена")
		return
	case errors.Is(err, stack.ErrNoActiveBlock):
		respondError(c, http.StatusConflict, "Нет движущегося блока")
		return
	case err != nil:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Ошибка обработки нажатия")
		return
	}

	respondOK(c, http.StatusOK, res.Outcome.Kind.String(), res)
}

func (rs *RestServer) handleReset(c *gin.Context, s *game.Session) {
	respondOK(c, http.StatusOK, "Новая партия", s.Reset(c.Request.Context()))
}

func (rs *RestServer) handleDeleteGame(c *gin.Context, s *game.Session) {
	if err := rs.manager.Delete(s.ID); err != nil {
		respondError(c, http.StatusNotFound, "Сессия не найдена")
		return
	}
	respondOK(c, http.StatusOK, "Сессия закрыта", nil)
}
