package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/arstack/internal/config"
	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/logging"
	"github.com/annel0/arstack/internal/replay"
	"github.com/annel0/arstack/internal/sim"
)

func main() {
	var (
		games      = flag.Int("games", 1000, "количество партий")
		workers    = flag.Int("workers", 0, "параллельных воркеров (0 — по числу CPU)")
		skill      = flag.Float64("skill", 0.7, "мастерство бота 0.0 - 1.0")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "начальное зерно")
		maxTaps    = flag.Int("max-taps", 5000, "ограничение длины партии")
		progress   = flag.Bool("progress", true, "показывать прогресс")
		record     = flag.Bool("record", false, "записать лучшую высоту в хранилище рекорда из конфигурации")
		configPath = flag.String("config", "", "путь к YAML конфигурации (для -record)")
		replayDir  = flag.String("replay-dir", "", "сохранить лучшую партию в хранилище записей")
	)
	flag.Parse()

	logging.SetLogDir("")
	logger := logging.GetSimLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("🤖 Симуляция: %d партий, мастерство %.2f, зерно %d", *games, *skill, *seed)

	rep, err := sim.Run(ctx, sim.Config{
		Games:        *games,
		Workers:      *workers,
		Skill:        *skill,
		Seed:         *seed,
		MaxTaps:      *maxTaps,
		ShowProgress: *progress,
	})
	if err != nil {
		log.Fatalf("❌ Симуляция прервана: %v", err)
	}

	if err := rep.Print(os.Stdout); err != nil {
		log.Fatalf("❌ Ошибка вывода отчёта: %v", err)
	}

	if *replayDir != "" {
		saveBest(ctx, logger, *replayDir, rep, *skill, *maxTaps)
	}
	if *record {
		recordBest(ctx, logger, *configPath, rep.Max)
	}
}

// saveBest переигрывает лучшую партию по её зерну и сохраняет запись
func saveBest(ctx context.Context, logger *logging.Logger, dir string, rep *sim.Report, skill float64, maxTaps int) {
	best := sim.PlayOne(0, skill, rep.BestSeed, maxTaps)
	if !best.Result.Over {
		logger.Warn("⚠️ Лучшая партия упёрлась в лимит нажатий, запись не сохраняется")
		return
	}

	store, err := replay.NewBadgerStore(dir)
	if err != nil {
		logger.Error("❌ Ошибка открытия хранилища записей: %v", err)
		return
	}
	defer store.Close()

	r := replay.Replay{
		ID:          game.NewReplayID(),
		Player:      "bot",
		Taps:        best.Taps,
		FinalHeight: best.Result.FinalHeight,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Save(ctx, r); err != nil {
		logger.Error("❌ Ошибка сохранения записи: %v", err)
		return
	}
	logger.Info("💾 Лучшая партия (высота %d) сохранена как %s", r.FinalHeight, r.ID)
}

func recordBest(ctx context.Context, logger *logging.Logger, configPath string, height int) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("❌ Ошибка загрузки конфигурации: %v", err)
		return
	}

	repo, err := highscore.Open(ctx, cfg.HighScore)
	if err != nil {
		logger.Error("❌ Ошибка открытия хранилища рекорда: %v", err)
		return
	}
	tracker, err := highscore.NewTracker(ctx, repo)
	if err != nil {
		logger.Error("❌ Ошибка чтения рекорда: %v", err)
		_ = repo.Close()
		return
	}
	defer tracker.Close()

	updated, err := tracker.RecordFinalHeight(ctx, height)
	if err != nil {
		logger.Error("❌ Ошибка записи рекорда: %v", err)
		return
	}
	if updated {
		logger.Info("🏆 Новый рекорд: %d", tracker.CurrentHighScore())
	} else {
		logger.Info("Рекорд не побит: %d ≥ %d", tracker.CurrentHighScore(), height)
	}
}
