package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/config"
	"github.com/dmmcquay/chessbook/internal/logging"
)

// Key describes a render request. Two requests with equal keys produce
// byte-identical output, so the rendered entry can be reused.
type Key struct {
	Tool    string            `json:"tool"`
	Input   string            `json:"input"`
	Options map[string]string `json:"options,omitempty"`
}

// Observer is told about cache activity; the metrics collector implements it.
type Observer interface {
	RecordCacheHit(tool string)
	RecordCacheMiss(tool string)
	RecordCacheEviction(n int)
	UpdateCacheSize(items int, bytes int64)
}

// Manager caches rendered documents keyed by request.
type Manager struct {
	lru      *LRU
	logger   logging.ContextLogger
	observer Observer
}

// NewManager returns a manager; a nil or disabled config yields a manager
// that never stores anything.
func NewManager(cfg *config.CacheConfig, logger logging.ContextLogger) *Manager {
	m := &Manager{logger: logger}
	if cfg == nil || !cfg.Enabled {
		return m
	}
	m.lru = NewLRU(cfg.MaxItems, cfg.MaxSizeBytes, time.Duration(cfg.TTLSeconds)*time.Second)
	return m
}

// SetObserver attaches o to receive hit, miss and size updates.
func (m *Manager) SetObserver(o Observer) {
	m.observer = o
}

// Hash returns the hex SHA-256 of k's canonical JSON form. Map keys are
// sorted by encoding/json, so option order does not matter.
func (k Key) Hash() (string, error) {
	data, err := json.Marshal(k)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal cache key")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get looks up a previously rendered entry.
func (m *Manager) Get(k Key) (Entry, bool) {
	if m.lru == nil {
		return Entry{}, false
	}
	h, err := k.Hash()
	if err != nil {
		return Entry{}, false
	}
	e, ok := m.lru.Get(h)
	if m.observer != nil {
		if ok {
			m.observer.RecordCacheHit(k.Tool)
		} else {
			m.observer.RecordCacheMiss(k.Tool)
		}
	}
	if ok {
		m.logger.Debug("cache hit", "tool", k.Tool, "key", h[:12])
	}
	return e, ok
}

// Put stores a rendered entry.
func (m *Manager) Put(k Key, e Entry) {
	if m.lru == nil {
		return
	}
	h, err := k.Hash()
	if err != nil {
		m.logger.Warn("not caching %s result: %v", k.Tool, err)
		return
	}
	evicted := m.lru.Put(h, e)
	if m.observer != nil {
		if evicted > 0 {
			m.observer.RecordCacheEviction(evicted)
		}
		m.observer.UpdateCacheSize(m.lru.Len(), m.lru.Size())
	}
	m.logger.Debug("cached render", "tool", k.Tool, "bytes", len(e.Data), "evicted", evicted)
}

// GetOrRender returns the cached entry for k or calls render and caches
// its result. Errors are never cached.
func (m *Manager) GetOrRender(k Key, render func() (Entry, error)) (Entry, bool, error) {
	if e, ok := m.Get(k); ok {
		return e, true, nil
	}
	e, err := render()
	if err != nil {
		return Entry{}, false, err
	}
	m.Put(k, e)
	return e, false, nil
}

func (m *Manager) Stats() Stats {
	if m.lru == nil {
		return Stats{}
	}
	return m.lru.Stats()
}

func (m *Manager) Clear() {
	if m.lru != nil {
		m.lru.Clear()
		if m.observer != nil {
			m.observer.UpdateCacheSize(0, 0)
		}
	}
}

func (m *Manager) IsEnabled() bool {
	return m.lru != nil
}
