package logging

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"sync"
)

// Компоненты сервера с собственным файлом логов
const (
	ComponentAPI    = "api"
	ComponentRunner = "runner"
)

type levels struct {
	console LogLevel
	file    LogLevel
}

// LoggerManager хранит логгеры компонентов и их пороги.
// Порог можно задать до создания логгера: он применится при первом GetLogger.
type LoggerManager struct {
	mu        sync.RWMutex
	loggers   map[string]*Logger
	overrides map[string]levels
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newManager() *LoggerManager {
	return &LoggerManager{
		loggers:   make(map[string]*Logger),
		overrides: make(map[string]levels),
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newManager()
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	if lv, ok := lm.overrides[component]; ok {
		logger.SetLevels(lv.console, lv.file)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// SetLogLevel задаёт пороги компонента, в том числе ещё не созданного
func (lm *LoggerManager) SetLogLevel(component string, console, file LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.overrides[component] = levels{console: console, file: file}
	if logger, ok := lm.loggers[component]; ok {
		logger.SetLevels(console, file)
	}
}

// ApplyLevels разбирает пороги из конфигурации вида {"api": "warn"}.
// Уровень действует и на консоль, и на файл компонента.
func (lm *LoggerManager) ApplyLevels(byComponent map[string]string) error {
	for _, component := range slices.Sorted(maps.Keys(byComponent)) {
		level, err := ParseLevel(byComponent[component])
		if err != nil {
			return fmt.Errorf("компонент %s: %w", component, err)
		}
		lm.SetLogLevel(component, level, level)
	}
	return nil
}

// CloseAll закрывает файлы всех логгеров. Пороги компонентов сохраняются.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	clear(lm.loggers)
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированный список открытых логгеров
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return slices.Sorted(maps.Keys(lm.loggers))
}

// componentLogger при ошибке открытия файла пишет только в консоль
func componentLogger(component string) *Logger {
	lm := GetLoggerManager()
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	opts := currentOptions()
	fallback := &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: opts.MinConsoleLevel,
		minFileLevel:    ERROR + 1,
	}
	fallback.Warn("⚠️ Файл логов недоступен, только консоль: %v", err)
	return fallback
}

// GetAPILogger журнал HTTP запросов
func GetAPILogger() *Logger {
	return componentLogger(ComponentAPI)
}

// GetRunnerLogger журнал игрового цикла
func GetRunnerLogger() *Logger {
	return componentLogger(ComponentRunner)
}
