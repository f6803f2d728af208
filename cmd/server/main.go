package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/arstack/internal/api"
	"github.com/annel0/arstack/internal/auth"
	"github.com/annel0/arstack/internal/config"
	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/logging"
	"github.com/annel0/arstack/internal/observability"
	"github.com/annel0/arstack/internal/replay"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV STACK_CONFIG)")
	hashPassword := flag.String("hash-password", "", "вывести bcrypt-хеш пароля администратора и выйти")
	genSecret := flag.Bool("gen-secret", false, "вывести случайный JWT секрет и выйти")
	flag.Parse()

	switch {
	case *hashPassword != "":
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("❌ Ошибка хеширования: %v", err)
		}
		fmt.Println(hash)
		return
	case *genSecret:
		fmt.Println(auth.GenerateSecureSecret())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer func() { _ = logging.GetLoggerManager().CloseAll() }()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logging.Warn("⚠️ %v, используется INFO", err)
		level = logging.INFO
	}
	logging.GetLoggerManager().SetLevels(level, logging.TRACE)
	gameLogger := logging.GetGameLogger()

	logging.Info("🎮 Запуск ARStack Server %s...", api.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === OBSERVABILITY ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ Трассировка отключена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === РЕКОРД ===
	repo, err := highscore.Open(ctx, cfg.HighScore)
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища рекорда (%s): %v", cfg.HighScore.Backend, err)
		os.Exit(1)
	}
	tracker, err := highscore.NewTracker(ctx, repo)
	if err != nil {
		logging.Error("❌ Ошибка чтения рекорда: %v", err)
		os.Exit(1)
	}
	defer tracker.Close()
	logging.Info("🏆 Рекорд: %d (хранилище %s)", tracker.CurrentHighScore(), cfg.HighScore.Backend)

	// === ШИНА СОБЫТИЙ ===
	bus, err := eventbus.Open(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка подключения к шине событий: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Логирование событий недоступно: %v", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus, registry)
	busMetrics.Start()
	defer busMetrics.Stop()

	webhooks := api.NewOutboundWebhookManager("arstack")
	if err := webhooks.Start(ctx, bus); err != nil {
		logging.Warn("⚠️ Webhook'и отключены: %v", err)
		webhooks = nil
	} else {
		defer webhooks.Stop()
	}

	// === ЗАПИСИ ПАРТИЙ ===
	var replays replay.Store
	if cfg.Replay.Enabled {
		store, err := replay.NewBadgerStore(filepath.Join(cfg.Replay.DataDir, "replays"))
		if err != nil {
			logging.Error("❌ Ошибка открытия хранилища записей: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		replays = store
	}

	// === ЗВУК ===
	var synth *cue.Synth
	if cfg.Audio.Enabled {
		synth = cue.NewSynth(cfg.Audio.SampleRate, cfg.Audio.Volume)
	}

	// === АВТОРИЗАЦИЯ ===
	if cfg.Auth.JWTSecret == "" {
		logging.Warn("⚠️ JWT секрет не задан, используется случайный: токены не переживут перезапуск")
	}
	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logging.Error("❌ Ошибка инициализации JWT: %v", err)
		os.Exit(1)
	}
	admin := auth.NewAdminGuard(cfg.Auth.AdminPasswordHash)
	if !admin.Enabled() {
		logging.Info("🔐 Пароль администратора не задан, административные эндпоинты недоступны")
	}

	// === ИГРОВЫЕ СЕССИИ ===
	manager := game.NewManager(game.Deps{
		Tracker:      tracker,
		Bus:          bus,
		Cues:         cue.NewLogPlayer(gameLogger),
		Replays:      replays,
		Metrics:      game.NewMetrics(registry),
		Logger:       gameLogger,
		MaxTickBatch: cfg.Game.MaxTickBatch,
	}, cfg.Game.MaxSessions, time.Duration(cfg.Game.IdleTimeoutSec)*time.Second)
	go manager.Run(ctx)

	restServer := api.NewRestServer(api.Config{
		Manager:  manager,
		Tracker:  tracker,
		Replays:  replays,
		Synth:    synth,
		Issuer:   issuer,
		Admin:    admin,
		Bus:      bus,
		Webhooks: webhooks,
		Registry: registry,
		Logger:   logging.GetServerLogger(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- restServer.Start(cfg.Server.RESTAddr()) }()

	logging.Info("✅ Сервер готов принимать соединения")
	logging.Info("   🌐 REST API: http://localhost%s", cfg.Server.RESTAddr())
	logging.Info("   ❤️  Health check: http://localhost%s/health", cfg.Server.RESTAddr())
	logging.Info("   📈 Метрики: http://localhost%s/metrics", cfg.Server.RESTAddr())

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, останавливаемся...")
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ REST сервер остановлен с ошибкой: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("⚠️ Ошибка остановки трассировки: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
