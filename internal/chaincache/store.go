package chaincache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/config"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Key is the sole identity for cache lookups: exact match on
// (ticker, expiration, as-of date), no fuzzy or partial matching.
// Staleness never needs a TTL because the as-of date is part of the
// key; a new trading day always misses and refetches.
type Key struct {
	Ticker     string
	Expiration time.Time
	AsOf       time.Time
}

// String returns the canonical key form
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s",
		strings.ToUpper(k.Ticker),
		k.Expiration.Format(contracts.DateLayout),
		k.AsOf.Format(contracts.DateLayout),
	)
}

// filename is the on-disk entry name, deterministic so an external
// process can enumerate or delete entries by ticker or date
func (k Key) filename() string {
	return fmt.Sprintf("%s__%s.json",
		k.AsOf.Format(contracts.DateLayout),
		k.Expiration.Format(contracts.DateLayout),
	)
}

// expirationsFilename names the expirations-index entry for a
// (ticker, as-of) pair, used by preflight
func expirationsFilename(asOf time.Time) string {
	return fmt.Sprintf("%s__expirations.json", asOf.Format(contracts.DateLayout))
}

// Stats summarizes cache contents
type Stats struct {
	EntryCount int      `json:"entry_count"`
	TotalBytes int64    `json:"total_bytes"`
	Tickers    []string `json:"tickers"`
}

// Store is a content-addressed, file-backed chain snapshot cache.
// One durable JSON file per key under root/<TICKER>/. Writes are
// keyed, so concurrent writers only ever race on equivalent data and
// last-write-wins is safe.
type Store struct {
	root    string
	enabled bool
	logger  *logger.Logger
}

// New creates a Store. An unwritable root with caching enabled is the
// one fatal configuration error in the engine.
func New(cfg config.CacheConfig, log *logger.Logger) (*Store, error) {
	s := &Store{
		root:    cfg.Root,
		enabled: cfg.Enabled,
		logger:  log,
	}

	if !cfg.Enabled {
		return s, nil
	}

	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("cache root unwritable: %w", err)
	}

	return s, nil
}

// Enabled reports whether the store persists anything
func (s *Store) Enabled() bool {
	return s.enabled
}

// Get returns the snapshot for a key, or a miss. A corrupt or
// unreadable entry is a miss, never an error: the engine falls back
// to the provider instead of failing the pipeline.
func (s *Store) Get(key Key) (*contracts.ChainSnapshot, bool) {
	if !s.enabled {
		return nil, false
	}

	path := s.entryPath(key.Ticker, key.filename())
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var snap contracts.ChainSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key.String(),
			"error": err.Error(),
		}).Warn("Corrupt cache entry, treating as miss")
		return nil, false
	}

	return &snap, true
}

// Put persists a snapshot durably. Write is atomic (temp + rename) so
// readers never observe a partial entry.
func (s *Store) Put(key Key, snap *contracts.ChainSnapshot) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return s.writeEntry(key.Ticker, key.filename(), data)
}

// GetExpirations returns the cached expirations index for a
// (ticker, as-of) pair
func (s *Store) GetExpirations(ticker string, asOf time.Time) ([]time.Time, bool) {
	if !s.enabled {
		return nil, false
	}

	path := s.entryPath(ticker, expirationsFilename(asOf))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var expirations []time.Time
	if err := json.Unmarshal(data, &expirations); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  err.Error(),
		}).Warn("Corrupt expirations index, treating as miss")
		return nil, false
	}

	return expirations, true
}

// PutExpirations persists the expirations index
func (s *Store) PutExpirations(ticker string, asOf time.Time, expirations []time.Time) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(expirations)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return s.writeEntry(ticker, expirationsFilename(asOf), data)
}

// Stats walks the cache root and summarizes its contents
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	if !s.enabled {
		return stats, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, fmt.Errorf("cache stats failed: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue
		}

		counted := false
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			stats.EntryCount++
			stats.TotalBytes += info.Size()
			counted = true
		}

		if counted {
			stats.Tickers = append(stats.Tickers, entry.Name())
		}
	}

	sort.Strings(stats.Tickers)
	return stats, nil
}

// Clear removes entries for one ticker, or everything when ticker is
// empty. Returns the number of ticker directories removed.
func (s *Store) Clear(ticker string) (int, error) {
	if !s.enabled {
		return 0, nil
	}

	if ticker == "" {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			if os.IsNotExist(err) {
				return 0, nil
			}
			return 0, fmt.Errorf("cache clear failed: %w", err)
		}
		removed := 0
		for _, entry := range entries {
			if entry.IsDir() {
				if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
					return removed, fmt.Errorf("cache clear failed: %w", err)
				}
				removed++
			}
		}
		return removed, nil
	}

	dir := filepath.Join(s.root, strings.ToUpper(ticker))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("cache clear failed for %s: %w", ticker, err)
	}
	return 1, nil
}

func (s *Store) entryPath(ticker, filename string) string {
	return filepath.Join(s.root, strings.ToUpper(ticker), filename)
}

func (s *Store) writeEntry(ticker, filename string, data []byte) error {
	dir := filepath.Join(s.root, strings.ToUpper(ticker))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache dir create failed: %w", err)
	}

	path := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, filename+".tmp*")
	if err != nil {
		return fmt.Errorf("cache temp file failed: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache write failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache rename failed: %w", err)
	}

	return nil
}
