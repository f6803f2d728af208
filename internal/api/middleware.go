package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arstack/internal/auth"
	"github.com/annel0/arstack/internal/game"
)

const ctxClaims = "claims"

// jwtMiddleware проверяет JWT токен в заголовке Authorization.
// Для websocket допускается параметр ?token=, так как браузер не передаёт заголовки.
func (rs *RestServer) jwtMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Проверяем формат "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(c, http.StatusUnauthorized, "Неверный формат токена")
				return
			}
			token = parts[1]
		}

		if token == "" {
			respondError(c, http.StatusUnauthorized, "Отсутствует токен авторизации")
			return
		}

		claims, err := rs.issuer.Validate(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Недействительный токен")
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// adminMiddleware проверяет, что пользователь является администратором
func (rs *RestServer) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			respondError(c, http.StatusInternalServerError, "Отсутствует информация о пользователе")
			return
		}
		if !claims.IsAdmin {
			respondError(c, http.StatusForbidden, "Недостаточно прав доступа")
			return
		}
		c.Next()
	}
}

// withSession находит сессию по :id и проверяет, что она принадлежит игроку
func (rs *RestServer) withSession(h func(*gin.Context, *game.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := rs.manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusNotFound, "Сессия не найдена")
			return
		}

		claims := claimsFrom(c)
		if claims == nil || (s.Player != claims.Player && !claims.IsAdmin) {
			respondError(c, http.StatusForbidden, "Сессия принадлежит другому игроку")
			return
		}

		h(c, s)
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
