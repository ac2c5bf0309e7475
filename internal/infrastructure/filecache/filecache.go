// Package filecache keeps the last good auxiliary feed prices on disk.
package filecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals // skip
)

const DefaultTTL = time.Hour

type entry struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt int64           `json:"updated_at"`
}

type Store struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	loaded  bool
	entries map[string]entry
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(path string, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		path:    path,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns a price written less than ttl ago. A missing or corrupt file is a miss.
func (s *Store) Get(ctx context.Context, giftID int64) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)

	e, ok := s.entries[strconv.FormatInt(giftID, 10)]
	if !ok {
		return decimal.Decimal{}, false
	}

	if s.now().Sub(time.Unix(e.UpdatedAt, 0)) >= s.ttl {
		return decimal.Decimal{}, false
	}

	return e.Price, true
}

// PutAll stamps prices with the current time and replaces the file atomically.
func (s *Store) PutAll(ctx context.Context, prices map[int64]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)

	at := s.now().Unix()
	for id, price := range prices {
		s.entries[strconv.FormatInt(id, 10)] = entry{Price: price, UpdatedAt: at}
	}

	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal feed cache: %w", err)
	}

	return writeAtomic(s.path, data)
}

func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger(ctx).Warn("feed cache unreadable", logx.Error(err), slog.String(logx.FieldPath, s.path))
		}
		return
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger(ctx).Warn("feed cache corrupt, ignoring", logx.Error(err), slog.String(logx.FieldPath, s.path))
		return
	}

	for k, v := range entries {
		s.entries[k] = v
	}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create feed cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp feed cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp feed cache: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("sync temp feed cache: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp feed cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace feed cache: %w", err)
	}

	return nil
}
