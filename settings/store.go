package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecordKey is appended to the store prefix to form the settings key.
const RecordKey = "settings"

// Text codes attached to store errors.
const (
	TextCodeReadFailure   = "SETTINGS_READ_FAILURE"
	TextCodeWriteFailure  = "SETTINGS_WRITE_FAILURE"
	TextCodeEncodeFailure = "SETTINGS_ENCODE_FAILURE"
)

// Store loads and saves the single configuration record.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, input Partial) (Snapshot, error)
}

// Record is the persisted envelope around the sanitized settings.
type Record struct {
	Revision string    `json:"revision"`
	SavedAt  time.Time `json:"saved_at"`
	Settings Partial   `json:"settings"`
}

// Backend reads and writes the raw record bytes.
type Backend interface {
	ReadRecord(ctx context.Context) ([]byte, bool, error)
	WriteRecord(ctx context.Context, data []byte) error
}

// TaxonomyLister supplies the registered attribute taxonomy names used to
// validate column selections on save.
type TaxonomyLister interface {
	AttributeTaxonomyNames(ctx context.Context) ([]string, error)
}

// SaveHook runs after a record is persisted.
type SaveHook func(ctx context.Context, snap Snapshot) error

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithTaxonomies validates column taxonomies against lister on save.
func WithTaxonomies(lister TaxonomyLister) Option {
	return func(s *RecordStore) {
		s.taxonomies = lister
	}
}

// WithLogger sets the logger used for warnings. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *RecordStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on saved records.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) {
		if now != nil {
			s.now = now
		}
	}
}

// RecordStore implements Store over a Backend.
type RecordStore struct {
	backend    Backend
	taxonomies TaxonomyLister
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.RWMutex
	hooks []SaveHook
}

// NewRecordStore builds a store over backend.
func NewRecordStore(backend Backend, opts ...Option) *RecordStore {
	s := &RecordStore{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewRedisStore keeps the record under prefix+RecordKey in Redis.
func NewRedisStore(client redis.UniversalClient, prefix string, opts ...Option) *RecordStore {
	return NewRecordStore(NewRedisBackend(client, prefix+RecordKey), opts...)
}

// NewMemoryStore keeps the record in process.
func NewMemoryStore(opts ...Option) *RecordStore {
	return NewRecordStore(&MemoryBackend{}, opts...)
}

// OnSave registers a hook called after every successful save.
func (s *RecordStore) OnSave(hook SaveHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Load returns the resolved settings. A missing or malformed record yields
// Defaults; only backend failures are reported, alongside Defaults.
func (s *RecordStore) Load(ctx context.Context) (Snapshot, error) {
	rec, ok, err := s.read(ctx)
	if err != nil {
		return Defaults(), err
	}
	if !ok {
		return Defaults(), nil
	}
	return Resolve(rec.Settings), nil
}

// Current returns the persisted envelope, if any.
func (s *RecordStore) Current(ctx context.Context) (Record, bool, error) {
	return s.read(ctx)
}

// Save sanitizes input, persists it under a new revision and runs the save
// hooks. Hook failures are logged; the record stays saved.
func (s *RecordStore) Save(ctx context.Context, input Partial) (Snapshot, error) {
	var allowed []string
	if s.taxonomies != nil {
		names, err := s.taxonomies.AttributeTaxonomyNames(ctx)
		if err != nil {
			return Snapshot{}, goerrors.Wrap(err, goerrors.CategoryExternal, "list attribute taxonomies").
				WithTextCode(TextCodeReadFailure)
		}
		allowed = names
		if allowed == nil {
			allowed = []string{}
		}
	}

	clean := Sanitize(input, allowed)
	rec := Record{
		Revision: uuid.NewString(),
		SavedAt:  s.now().UTC(),
		Settings: clean,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Snapshot{}, goerrors.Wrap(err, goerrors.CategoryInternal, "encode settings record").
			WithTextCode(TextCodeEncodeFailure)
	}

	if err := s.backend.WriteRecord(ctx, data); err != nil {
		return Snapshot{}, goerrors.Wrap(err, goerrors.CategoryExternal, "write settings record").
			WithTextCode(TextCodeWriteFailure).
			WithMetadata(map[string]any{"revision": rec.Revision})
	}

	snap := Resolve(clean)

	s.mu.RLock()
	hooks := append([]SaveHook(nil), s.hooks...)
	s.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "settings save hook failed",
				slog.String("revision", rec.Revision),
				slog.Any("error", err))
		}
	}

	return snap, nil
}

func (s *RecordStore) read(ctx context.Context) (Record, bool, error) {
	data, ok, err := s.backend.ReadRecord(ctx)
	if err != nil {
		return Record{}, false, goerrors.Wrap(err, goerrors.CategoryExternal, "read settings record").
			WithTextCode(TextCodeReadFailure)
	}
	if !ok {
		return Record{}, false, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.WarnContext(ctx, "malformed settings record, using defaults", slog.Any("error", err))
		return Record{}, false, nil
	}
	return rec, true, nil
}

// RedisBackend stores the record as a single string key.
type RedisBackend struct {
	rdb redis.UniversalClient
	key string
}

// NewRedisBackend stores the record under key.
func NewRedisBackend(client redis.UniversalClient, key string) *RedisBackend {
	return &RedisBackend{rdb: client, key: key}
}

// ReadRecord implements Backend.
func (b *RedisBackend) ReadRecord(ctx context.Context) ([]byte, bool, error) {
	data, err := b.rdb.Get(ctx, b.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// WriteRecord implements Backend. The record never expires.
func (b *RedisBackend) WriteRecord(ctx context.Context, data []byte) error {
	return b.rdb.Set(ctx, b.key, data, 0).Err()
}

// MemoryBackend keeps the record bytes in process.
type MemoryBackend struct {
	mu   sync.RWMutex
	data []byte
}

// ReadRecord implements Backend.
func (b *MemoryBackend) ReadRecord(_ context.Context) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), b.data...), true, nil
}

// WriteRecord implements Backend.
func (b *MemoryBackend) WriteRecord(_ context.Context, data []byte) error {
	b.mu.Lock()
	b.data = append([]byte(nil), data...)
	b.mu.Unlock()
	return nil
}
