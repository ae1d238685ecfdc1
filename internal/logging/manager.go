package logging

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
)

// Компоненты ядра. Каждому соответствует свой логгер и свой файл в TRILE_LOG_DIR.
const (
	ComponentWorld     = "world"
	ComponentCollision = "collision"
	ComponentPhysics   = "physics"
	ComponentCamera    = "camera"
	ComponentLevel     = "level"
	ComponentSim       = "sim"
)

// ErrUnknownComponent — для компонента ещё не создан логгер
var ErrUnknownComponent = errors.New("unknown log component")

// LoggerManager хранит логгеры компонентов симуляции
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает общий для процесса набор логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента. Логгеры создаются один раз за процесс
// при первом обращении из конструктора пакета, поэтому хватает одной блокировки.
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}
	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("logger %q: %w", component, err)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger возвращает логгер компонента. Если файл логов открыть не удалось,
// компонент пишет только в консоль, а причина сообщается один раз в общий лог.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}
	Default().Warn("Файловый лог компонента %s недоступен, пишем только в консоль: %v", component, err)

	l = &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if existing, ok := lm.loggers[component]; ok {
		return existing
	}
	lm.loggers[component] = l
	return l
}

// CloseAll закрывает файлы всех компонентов и забывает логгеры
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает имена компонентов с созданными логгерами по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, console, file LogLevel) error {
	lm.mu.Lock()
	l, ok := lm.loggers[component]
	lm.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, component)
	}
	l.SetLevels(console, file)
	return nil
}

// SetAllLevels применяет уровни ко всем созданным логгерам компонентов
func (lm *LoggerManager) SetAllLevels(console, file LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, l := range lm.loggers {
		l.SetLevels(console, file)
	}
}

// GetComponentLogger — логгер компонента из общего набора
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger     { return GetComponentLogger(ComponentWorld) }
func GetCollisionLogger() *Logger { return GetComponentLogger(ComponentCollision) }
func GetPhysicsLogger() *Logger   { return GetComponentLogger(ComponentPhysics) }
func GetCameraLogger() *Logger    { return GetComponentLogger(ComponentCamera) }
func GetLevelLogger() *Logger     { return GetComponentLogger(ComponentLevel) }
func GetSimLogger() *Logger       { return GetComponentLogger(ComponentSim) }
