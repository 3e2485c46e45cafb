// Package logger: логирование с префиксом процесса и асинхронной записью, чтобы
// вызовы из репозиториев и хаба не блокировали обработку запросов.
// Уровень задаётся LOG_LEVEL (debug, info, warn, error).
package logger

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	asyncBufferSize = 8192
	slowCall        = 100 * time.Millisecond
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	prefix   string
	minLevel = LevelInfo
	ch       chan string
	once     sync.Once
	mu       sync.RWMutex
)

// ParseLevel переводит строку из конфига в Level; неизвестное значение: info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func initWorker() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		SetLevel(ParseLevel(v))
	}
	ch = make(chan string, asyncBufferSize)
	go func() {
		for msg := range ch {
			log.Print(msg)
		}
	}()
}

func enqueue(lvl Level, msg string) {
	once.Do(initWorker)
	mu.RLock()
	skip := lvl < minLevel
	mu.RUnlock()
	if skip {
		return
	}
	select {
	case ch <- msg:
	default:
		// Буфер полон: не блокируем, теряем лог
	}
}

// SetPrefix задаёт префикс для всех последующих логов (например "chat").
func SetPrefix(p string) {
	mu.Lock()
	prefix = p
	mu.Unlock()
}

// SetLevel переопределяет уровень (после загрузки конфига).
func SetLevel(l Level) {
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

func tag(lvl Level) string {
	mu.RLock()
	p := prefix
	mu.RUnlock()
	var b strings.Builder
	if p != "" {
		b.WriteString("[" + p + "] ")
	}
	switch lvl {
	case LevelDebug:
		b.WriteString("DEBUG: ")
	case LevelWarn:
		b.WriteString("WARN: ")
	case LevelError:
		b.WriteString("ERROR: ")
	}
	return b.String()
}

func Debugf(format string, v ...any) {
	enqueue(LevelDebug, tag(LevelDebug)+fmt.Sprintf(format, v...))
}

func Info(v ...any) {
	enqueue(LevelInfo, tag(LevelInfo)+fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	enqueue(LevelInfo, tag(LevelInfo)+fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	enqueue(LevelWarn, tag(LevelWarn)+fmt.Sprintf(format, v...))
}

func Error(v ...any) {
	enqueue(LevelError, tag(LevelError)+fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	enqueue(LevelError, tag(LevelError)+fmt.Sprintf(format, v...))
}

// Fields форматирует пары key=value в стабильном порядке: logger.Errorf("send failed %s", logger.Fields{"owner": id}).
type Fields map[string]any

func (f Fields) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f[k]))
	}
	return strings.Join(parts, " ")
}

// LogDuration логирует имя функции и время выполнения в миллисекундах.
// На уровне info пишутся только вызовы дольше 100ms, на debug: все.
func LogDuration(fn string, start time.Time) {
	elapsed := time.Since(start)
	lvl := LevelDebug
	if elapsed >= slowCall {
		lvl = LevelInfo
	}
	enqueue(lvl, fmt.Sprintf("%sfn=%s duration_ms=%d", tag(lvl), fn, elapsed.Milliseconds()))
}

// DeferLogDuration возвращает функцию для defer: defer logger.DeferLogDuration("msg.Append", time.Now())().
func DeferLogDuration(fn string, start time.Time) func() {
	return func() { LogDuration(fn, start) }
}
