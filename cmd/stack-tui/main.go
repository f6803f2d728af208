package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/annel0/arstack/internal/bot"
	"github.com/annel0/arstack/internal/config"
	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/cue/device"
	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/logging"
	"github.com/annel0/arstack/internal/replay"
	"github.com/annel0/arstack/internal/stack"
)

// Сообщение о результате держится на экране столько кадров
const messageFrames = 45

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML конфигурации")
		demo       = flag.Bool("demo", false, "демо-режим: играет бот")
		skill      = flag.Float64("skill", 0.8, "мастерство бота в демо-режиме")
		sound      = flag.Bool("sound", true, "звуковые сигналы через динамик")
		player     = flag.String("player", "local", "имя игрока для записей партий")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Консоль занята интерфейсом, поэтому логи пишем только в файл
	logging.SetLogDir(cfg.Logging.Dir)
	logger, err := logging.NewLogger("tui")
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logger.Close()
	logger.SetLevels(logging.ERROR+1, logging.DEBUG)
	logging.SetDefaultLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := highscore.Open(ctx, cfg.HighScore)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища рекорда: %v", err)
	}
	tracker, err := highscore.NewTracker(ctx, repo)
	if err != nil {
		log.Fatalf("❌ Ошибка чтения рекорда: %v", err)
	}
	defer tracker.Close()

	var replays replay.Store
	if cfg.Replay.Enabled {
		store, err := replay.NewBadgerStore(cfg.Replay.DataDir + "/replays")
		if err != nil {
			logger.Warn("⚠️ Записи партий отключены: %v", err)
		} else {
			defer store.Close()
			replays = store
		}
	}

	players := cue.Multi{cue.NewLogPlayer(logger)}
	if *sound && cfg.Audio.Enabled {
		speaker, err := device.NewSpeaker(cue.NewSynth(cfg.Audio.SampleRate, cfg.Audio.Volume))
		if err != nil {
			logger.Warn("⚠️ Звук недоступен: %v", err)
		} else {
			defer speaker.Close()
			players = append(players, speaker)
		}
	}

	session := game.NewSession(ctx, game.NewSessionID(), *player, game.Deps{
		Tracker: tracker,
		Cues:    players,
		Replays: replays,
		Logger:  logger,
	})

	scr, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("❌ Ошибка создания экрана: %v", err)
	}
	if err := scr.Init(); err != nil {
		log.Fatalf("❌ Ошибка инициализации экрана: %v", err)
	}
	defer scr.Fini()

	var b *bot.Bot
	if *demo {
		b = bot.New(*skill, time.Now().UnixNano())
	}

	if err := run(ctx, scr, session, b, cfg.Game.FrameRate); err != nil {
		scr.Fini()
		logger.Error("❌ %v", err)
		os.Exit(1)
	}
}

// run крутит игровой цикл: кадры по таймеру, нажатия из терминала
func run(ctx context.Context, scr tcell.Screen, session *game.Session, b *bot.Bot, fps int) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go scr.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	f := frame{View: session.Snapshot(), Demo: b != nil}
	messageLeft := 0
	botWait := -1
	var field debrisField

	tap := func() {
		// Нажатие без блока или после конца партии просто игнорируется
		res, err := session.Tap(ctx)
		if err != nil {
			return
		}
		f.View = session.Snapshot()
		if res.Outcome.Fragment != nil {
			field.add(*res.Outcome.Fragment)
		}
		f.Message, f.Good = describe(res)
		messageLeft = messageFrames
		botWait = -1
	}

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return nil
				case ev.Rune() == 'r':
					f.View = session.Reset(ctx)
					f.Message = ""
					botWait = -1
					field.clear()
				case (ev.Rune() == ' ' || ev.Key() == tcell.KeyEnter) && b == nil:
					tap()
				}
			case *tcell.EventResize:
				scr.Sync()
			}

		case <-ticker.C:
			view, err := session.Tick(ctx, 1)
			if err != nil {
				return err
			}
			f.View = view

			if b != nil && !view.Over {
				if botWait < 0 {
					botWait = b.NextTap(session.CloneState())
				}
				if botWait == 0 {
					tap()
				} else {
					botWait--
				}
			}
			// Бот начинает новую партию сам, когда сообщение погасло
			if b != nil && f.View.Over && messageLeft == 0 {
				f.View = session.Reset(ctx)
				f.Message = ""
				field.clear()
			}

			if messageLeft > 0 {
				messageLeft--
				if messageLeft == 0 && !f.View.Over {
					f.Message = ""
				}
			}

			field.step(1 / float64(fps))
			f.Debris = field.blocks()

			render(scr, f)
			scr.Show()

		case <-ctx.Done():
			return nil
		}
	}
}

func describe(res game.TapResult) (string, bool) {
	o := res.Outcome
	switch {
	case o.Kind == stack.OutcomeGameOver && res.NewRecord:
		return "🏆 Новый рекорд! Высота " + strconv.Itoa(o.FinalHeight) + ". R — заново", true
	case o.Kind == stack.OutcomeGameOver:
		return "💥 Конец игры. Высота " + strconv.Itoa(o.FinalHeight) + ". R — заново", false
	case o.BonusApplied:
		return "✨ Идеально! Блок вырос", true
	case o.Perfect:
		return "✨ Идеально!", true
	default:
		return "", false
	}
}
