package eventbus

import (
	"time"

	"github.com/annel0/arstack/internal/config"
	"github.com/annel0/arstack/internal/logging"
)

// Open выбирает реализацию по конфигурации, при пустом URL in-memory шина.
func Open(cfg config.EventBusConfig) (EventBus, error) {
	if cfg.URL == "" {
		logging.Info("🚌 EventBus: in-memory (capacity=%d)", cfg.Capacity)
		return NewMemoryBus(cfg.Capacity), nil
	}

	bus, err := NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	logging.Info("🚌 EventBus: JetStream %s stream=%s", cfg.URL, cfg.Stream)
	return bus, nil
}
