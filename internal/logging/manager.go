package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Компоненты с собственными файлами логов
const (
	ComponentServer = "server"
	ComponentGame   = "game"
	ComponentSim    = "sim"
)

// LoggerManager хранит по одному логгеру на компонент.
// Уровень консоли общий: его задаёт конфигурация и он применяется
// и к уже созданным, и к будущим логгерам.
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
	fileLevel    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers:      make(map[string]*Logger),
			consoleLevel: INFO,
			fileLevel:    TRACE,
		}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	logger.SetLevels(lm.consoleLevel, lm.fileLevel)

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger как GetLogger, но при ошибке файла пишет только в stdout
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		return NewWriterLogger(component, os.Stdout, lm.level())
	}
	return logger
}

func (lm *LoggerManager) level() LogLevel {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.consoleLevel
}

// SetLevels меняет уровни всех логгеров компонентов
func (lm *LoggerManager) SetLevels(console, file LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel, lm.fileLevel = console, file
	for _, logger := range lm.loggers {
		logger.SetLevels(console, file)
	}
}

// Components возвращает имена созданных логгеров
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll закрывает файлы всех логгеров
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for name, logger := range lm.loggers {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("закрытие логгера %s: %w", name, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return firstErr
}

func GetServerLogger() *Logger { return GetLoggerManager().MustGetLogger(ComponentServer) }
func GetGameLogger() *Logger   { return GetLoggerManager().MustGetLogger(ComponentGame) }
func GetSimLogger() *Logger    { return GetLoggerManager().MustGetLogger(ComponentSim) }
