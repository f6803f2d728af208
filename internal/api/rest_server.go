package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/arstack/internal/auth"
	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/logging"
	"github.com/annel0/arstack/internal/middleware"
	"github.com/annel0/arstack/internal/replay"
)

// Version версия API
const Version = "v1.0.0"

// RestServer представляет REST API сервер
type RestServer struct {
	router   *gin.Engine
	manager  *game.Manager
	tracker  *highscore.Tracker
	replays  replay.Store
	synth    *cue.Synth
	issuer   *auth.TokenIssuer
	admin    *auth.AdminGuard
	bus      eventbus.EventBus
	webhooks *OutboundWebhookManager
	metrics  *ServerMetrics
	logger   *logging.Logger

	httpServer *http.Server
}

// Config содержит зависимости REST сервера
type Config struct {
	Manager  *game.Manager
	Tracker  *highscore.Tracker
	Replays  replay.Store // nil отключает /api/replays
	Synth    *cue.Synth
	Issuer   *auth.TokenIssuer
	Admin    *auth.AdminGuard
	Bus      eventbus.EventBus
	Webhooks *OutboundWebhookManager // nil отключает управление webhook'ами
	Registry *prometheus.Registry    // nil: собственный регистр
	Logger   *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(cfg Config) *RestServer {
	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("arstack"))
	router.Use(middleware.NewRequestLogger(cfg.Logger).Handler())

	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	promMw := middleware.NewPrometheusMiddleware("stack", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, reg)

	rs := &RestServer{
		router:   router,
		manager:  cfg.Manager,
		tracker:  cfg.Tracker,
		replays:  cfg.Replays,
		synth:    cfg.Synth,
		issuer:   cfg.Issuer,
		admin:    cfg.Admin,
		bus:      cfg.Bus,
		webhooks: cfg.Webhooks,
		metrics:  NewServerMetrics(),
		logger:   cfg.Logger,
	}

	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	api.GET("/server", rs.handleServerInfo)
	api.GET("/highscore", rs.handleHighScore)
	api.GET("/cues/:name", rs.handleCue)
	api.POST("/auth/token", rs.handleToken)

	// Защищенные эндпоинты (требуют JWT)
	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		games := protected.Group("/games")
		games.POST("", rs.handleCreateGame)
		games.GET("/:id", rs.withSession(rs.handleGetGame))
		games.POST("/:id/tick", rs.withSession(rs.handleTick))
		games.POST("/:id/tap", rs.withSession(rs.handleTap))
		games.POST("/:id/reset", rs.withSession(rs.handleReset))
		games.DELETE("/:id", rs.withSession(rs.handleDeleteGame))
		games.GET("/:id/stream", rs.withSession(rs.handleStream))

		protected.GET("/replays", rs.handleListReplays)
		protected.GET("/replays/:id", rs.handleGetReplay)

		// Административные эндпоинты (только для админов)
		admin := protected.Group("/admin")
		admin.Use(rs.adminMiddleware())
		{
			admin.POST("/highscore/reset", rs.handleResetHighScore)

			admin.GET("/webhooks", rs.handleGetOutboundWebhooks)
			admin.POST("/webhooks", rs.handleCreateOutboundWebhook)
			admin.DELETE("/webhooks/:id", rs.handleDeleteOutboundWebhook)
		}
	}
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, GenericResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, GenericResponse{Success: false, Message: message})
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер и блокируется до его остановки
func (rs *RestServer) Start(addr string) error {
	rs.httpServer = &http.Server{
		Addr:              addr,
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("🌐 REST API запущен на %s", addr)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно останавливает сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	return rs.httpServer.Shutdown(ctx)
}
