package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"techsel/pkg/logger"
)

// New создаёт бэкенд по конфигурации. Выключенный аудит даёт
// NoopLogger, неизвестный бэкенд сводится к stdout.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if !cfg.Enabled {
		return &NoopLogger{}, nil
	}

	switch cfg.Backend {
	case "file":
		return NewFileLogger(cfg)
	case "stdout", "":
		return NewStdoutLogger(cfg), nil
	default:
		logger.Log.Warn("Unknown audit backend, using stdout", "backend", cfg.Backend)
		return NewStdoutLogger(cfg), nil
	}
}

// StdoutLogger печатает записи в stdout построчно
type StdoutLogger struct {
	cfg *Config
	mu  sync.Mutex
}

func NewStdoutLogger(cfg *Config) *StdoutLogger {
	return &StdoutLogger{cfg: cfg}
}

func (l *StdoutLogger) Log(_ context.Context, entry *Entry) error {
	if !l.cfg.Enabled {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Println("[AUDIT]", string(data))
	return nil
}

func (l *StdoutLogger) Close() error { return nil }

// FileLogger пишет записи в файл через буферизованный канал. Запись
// асинхронная; при переполнении канала запись уходит в файл напрямую,
// чтобы не терять события.
type FileLogger struct {
	cfg    *Config
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	buffer chan *Entry
	done   chan struct{}
}

// NewFileLogger открывает файл журнала и запускает цикл записи.
func NewFileLogger(cfg *Config) (*FileLogger, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = "audit.log"
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	l := &FileLogger{
		cfg:    cfg,
		file:   file,
		writer: bufio.NewWriter(file),
		buffer: make(chan *Entry, bufferSize),
		done:   make(chan struct{}),
	}

	go l.processLoop()

	return l, nil
}

func (l *FileLogger) Log(_ context.Context, entry *Entry) error {
	if !l.cfg.Enabled {
		return nil
	}

	select {
	case l.buffer <- entry:
		return nil
	default:
		return l.writeEntry(entry)
	}
}

// Close останавливает цикл записи, досылает остаток буфера и
// закрывает файл.
func (l *FileLogger) Close() error {
	close(l.done)

	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		select {
		case entry := <-l.buffer:
			if err := l.writeEntryLocked(entry); err != nil {
				logger.Log.Warn("Failed to write audit entry during shutdown", "error", err)
			}
		default:
			if err := l.writer.Flush(); err != nil {
				logger.Log.Warn("Failed to flush audit writer", "error", err)
			}
			return l.file.Close()
		}
	}
}

func (l *FileLogger) processLoop() {
	flushPeriod := l.cfg.FlushPeriod
	if flushPeriod <= 0 {
		flushPeriod = 5 * time.Second
	}

	ticker := time.NewTicker(flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case entry := <-l.buffer:
			if err := l.writeEntry(entry); err != nil {
				logger.Log.Warn("Failed to write audit entry", "error", err)
			}
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *FileLogger) writeEntry(entry *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeEntryLocked(entry)
}

// writeEntryLocked требует удержания l.mu вызывающим.
func (l *FileLogger) writeEntryLocked(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = l.writer.Write(append(data, '\n'))
	return err
}

func (l *FileLogger) flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("Failed to flush audit writer", "error", err)
	}
}

// NoopLogger глушит аудит, когда он выключен
type NoopLogger struct{}

func (l *NoopLogger) Log(_ context.Context, _ *Entry) error { return nil }

func (l *NoopLogger) Close() error { return nil }

// Глобальный логгер позволяет писать аудит из любого места без
// протаскивания зависимости. По умолчанию NoopLogger.
var (
	globalMu     sync.RWMutex
	globalLogger Logger = &NoopLogger{}
)

// SetGlobal подменяет глобальный логгер. Вызывается при старте сервиса.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Get возвращает текущий глобальный логгер.
func Get() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Log пишет запись через глобальный логгер.
func Log(ctx context.Context, entry *Entry) error {
	return Get().Log(ctx, entry)
}
