// Package catalog discovers shard database files and owns their read
// connections for the lifetime of the process.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Shard describes one discovered partition of the corpus. StartDate and
// EndDate are ISO dates taken from the rows at discovery time; they stay
// valid because shards are rewritten only by the offline tooling, never
// while this process runs.
type Shard struct {
	ID        string
	Path      string
	StartDate string
	EndDate   string
	SizeBytes int64
}

// ErrUnknownShard is returned by Conn for identifiers absent from the catalog.
var ErrUnknownShard = errors.New("unknown shard")

// maxConnsPerShard sizes the per-shard connection pool. database/sql
// serializes use of each handle, so a small pool keeps one shard from
// starving concurrent searches without risking unsynchronized handle use.
const maxConnsPerShard = 4

// Catalog holds shard metadata discovered at startup and a lazily filled
// cache of read connections, one pool per shard.
type Catalog struct {
	dir    string
	logger *zap.Logger

	shards map[string]Shard

	mu    sync.Mutex
	conns map[string]*sql.DB
}

// Open scans dir for *.db shard files, validates each one and returns the
// catalog. A shard that fails validation is logged and excluded; it never
// aborts discovery of the others. An empty or missing directory yields an
// empty catalog, not an error.
func Open(dir string, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{
		dir:    dir,
		logger: logger,
		shards: make(map[string]Shard),
		conns:  make(map[string]*sql.DB),
	}

	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("shard directory not found", zap.String("dir", dir))
			return c, nil
		}
		return nil, fmt.Errorf("stat shard directory %s: %w", dir, err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("scan shard directory %s: %w", dir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		shard, err := validateShard(path)
		if err != nil {
			logger.Warn("skipping invalid shard",
				zap.String("path", path), zap.Error(err))
			continue
		}
		c.shards[shard.ID] = shard
		logger.Info("discovered shard",
			zap.String("shard", shard.ID),
			zap.String("start", shard.StartDate),
			zap.String("end", shard.EndDate),
			zap.Int64("size_bytes", shard.SizeBytes))
	}

	logger.Info("shard discovery complete", zap.Int("shards", len(c.shards)))
	return c, nil
}

// validateShard opens a throwaway connection, confirms the paragraphs table
// exists and reads the shard's date coverage and file size.
func validateShard(path string) (Shard, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Shard{}, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	var name string
	err = db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name='paragraphs'`,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return Shard{}, errors.New("missing paragraphs table")
	}
	if err != nil {
		return Shard{}, fmt.Errorf("inspect schema: %w", err)
	}

	var minDate, maxDate sql.NullString
	err = db.QueryRow(
		`SELECT MIN(document_date), MAX(document_date) FROM paragraphs`,
	).Scan(&minDate, &maxDate)
	if err != nil {
		return Shard{}, fmt.Errorf("read date range: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Shard{}, fmt.Errorf("stat: %w", err)
	}

	return Shard{
		ID:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:      path,
		StartDate: minDate.String,
		EndDate:   maxDate.String,
		SizeBytes: info.Size(),
	}, nil
}

// Shards returns a copy of the shard metadata map.
func (c *Catalog) Shards() map[string]Shard {
	out := make(map[string]Shard, len(c.shards))
	for id, s := range c.shards {
		out[id] = s
	}
	return out
}

// ShardIDs returns all shard identifiers in sorted order.
func (c *Catalog) ShardIDs() []string {
	ids := make([]string, 0, len(c.shards))
	for id := range c.shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of catalogued shards.
func (c *Catalog) Len() int { return len(c.shards) }

// Conn returns the cached connection pool for a shard, opening it on first
// use. The pool is shared by concurrent searches; database/sql serializes
// access to the underlying handles.
func (c *Catalog) Conn(shardID string) (*sql.DB, error) {
	shard, ok := c.shards[shardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShard, shardID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.conns[shardID]; ok {
		return db, nil
	}

	db, err := sql.Open("sqlite", shard.Path)
	if err != nil {
		c.logger.Error("shard connection failed",
			zap.String("shard", shardID), zap.Error(err))
		return nil, fmt.Errorf("connect shard %s: %w", shardID, err)
	}
	db.SetMaxOpenConns(maxConnsPerShard)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		c.logger.Debug("failed to set busy_timeout",
			zap.String("shard", shardID), zap.Error(err))
	}

	c.conns[shardID] = db
	return db, nil
}

// Close closes every cached connection. Call once at shutdown; not safe
// while queries are in flight.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for id, db := range c.conns {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close shard %s: %w", id, err)
		}
	}
	c.conns = make(map[string]*sql.DB)
	return firstErr
}
