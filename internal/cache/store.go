package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Field names a value in the cache record.
type Field string

const (
	FieldSession              Field = "session"
	FieldLastUploadedAvatarID Field = "lastUploadedAvatarId"
)

// ErrUnknownField is returned by Set for a field that is not part of Record.
var ErrUnknownField = errors.New("unknown cache field")

// Record is the persisted cache. The avatar ID is kept as a decimal string
// because Telegram photo IDs do not fit in a float64.
type Record struct {
	Session              string `json:"session,omitempty" dynamodbav:"session,omitempty"`
	LastUploadedAvatarID string `json:"lastUploadedAvatarId,omitempty" dynamodbav:"lastUploadedAvatarId,omitempty"`
}

// Backend loads and saves a whole Record.
type Backend interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, record Record) error
}

// Store holds the in-memory record and writes it through to a Backend on every Set.
// It is safe for concurrent use: gotd saves the session from its connection
// goroutines while the scheduler records uploads.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
	record  Record
}

// Open loads the record from backend. Load failures are logged and leave the
// store empty; they never abort startup.
func Open(ctx context.Context, backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{backend: backend, logger: logger}

	record, err := backend.Load(ctx)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("Cache not found, starting empty", zap.Error(err))
	case err != nil:
		logger.Error("Failed to load cache, starting empty", zap.Error(err))
	default:
		s.record = record
	}

	return s
}

// Get returns the current value of field, or "" if it was never set.
func (s *Store) Get(field Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldSession:
		return s.record.Session
	case FieldLastUploadedAvatarID:
		return s.record.LastUploadedAvatarID
	default:
		return ""
	}
}

// Set updates field and persists the whole record. The in-memory value is kept
// even if persisting fails. Saves are serialized so the backend always receives
// a complete record.
func (s *Store) Set(ctx context.Context, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldSession:
		s.record.Session = value
	case FieldLastUploadedAvatarID:
		s.record.LastUploadedAvatarID = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if err := s.backend.Save(ctx, s.record); err != nil {
		s.logger.Error("Failed to persist cache", zap.String("field", string(field)), zap.Error(err))
		return fmt.Errorf("failed to persist cache: %w", err)
	}

	return nil
}
