// Package audit пишет журнал значимых событий сервиса: запуск и
// остановка, решения планов, выгрузки отчётов. Записи уходят в stdout
// или файл в формате JSON, по одной на строку.
package audit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Action тип события
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
	ActionSolve  Action = "SOLVE"
	ActionExport Action = "EXPORT"
)

// Outcome результат события
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeDenied  Outcome = "DENIED"
)

// Entry одна запись журнала. Resource и ResourceID указывают на
// затронутый объект ("plan" с хэшем плана, "solution" с её id).
type Entry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Service      string         `json:"service"`
	Method       string         `json:"method"`
	Action       Action         `json:"action"`
	Outcome      Outcome        `json:"outcome"`
	UserID       string         `json:"user_id,omitempty"`
	Username     string         `json:"username,omitempty"`
	ClientIP     string         `json:"client_ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	Resource     string         `json:"resource,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Config параметры журнала аудита
type Config struct {
	Enabled  bool   `koanf:"enabled"`
	Backend  string `koanf:"backend"`   // stdout или file
	FilePath string `koanf:"file_path"` // путь файла для backend=file

	// BufferSize и FlushPeriod управляют асинхронной записью в файл.
	BufferSize  int           `koanf:"buffer_size"`
	FlushPeriod time.Duration `koanf:"flush_period"`
}

// DefaultConfig аудит в stdout с буфером на 1000 записей.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Backend:     "stdout",
		BufferSize:  1000,
		FlushPeriod: 5 * time.Second,
	}
}

// Builder пошагово собирает Entry
type Builder struct {
	entry *Entry
}

// NewEntry начинает запись с текущим временем.
func NewEntry() *Builder {
	return &Builder{
		entry: &Entry{
			Timestamp: time.Now(),
			Metadata:  make(map[string]any),
		},
	}
}

func (b *Builder) Service(s string) *Builder {
	b.entry.Service = s
	return b
}

func (b *Builder) Method(m string) *Builder {
	b.entry.Method = m
	return b
}

func (b *Builder) Action(a Action) *Builder {
	b.entry.Action = a
	return b
}

func (b *Builder) Outcome(o Outcome) *Builder {
	b.entry.Outcome = o
	return b
}

func (b *Builder) User(id, username string) *Builder {
	b.entry.UserID = id
	b.entry.Username = username
	return b
}

func (b *Builder) Client(ip, userAgent string) *Builder {
	b.entry.ClientIP = ip
	b.entry.UserAgent = userAgent
	return b
}

// Resource указывает затронутый объект, например ("plan", planHash)
// или ("solution", solutionID).
func (b *Builder) Resource(resource, resourceID string) *Builder {
	b.entry.Resource = resource
	b.entry.ResourceID = resourceID
	return b
}

func (b *Builder) RequestID(id string) *Builder {
	b.entry.RequestID = id
	return b
}

func (b *Builder) Duration(d time.Duration) *Builder {
	b.entry.DurationMs = d.Milliseconds()
	return b
}

func (b *Builder) Error(code, message string) *Builder {
	b.entry.ErrorCode = code
	b.entry.ErrorMessage = message
	return b
}

func (b *Builder) Meta(key string, value any) *Builder {
	b.entry.Metadata[key] = value
	return b
}

// Build выдаёт запись, генерируя ID, если он не задан.
func (b *Builder) Build() *Entry {
	if b.entry.ID == "" {
		b.entry.ID = generateID()
	}
	return b.entry
}

// generateID метка времени плюс случайный суффикс. Уникальность нужна
// только в пределах журнала одного сервиса.
func generateID() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = letters[rand.IntN(len(letters))]
	}

	return time.Now().Format("20060102150405") + "-" + string(suffix)
}

// Logger бэкенд журнала аудита
type Logger interface {
	// Log записывает событие.
	Log(ctx context.Context, entry *Entry) error

	// Close досылает буферизованные записи и освобождает ресурсы.
	Close() error
}
