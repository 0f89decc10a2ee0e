package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

const (
	ReasonFileChanged = "file_changed"
	ReasonManual      = "manual"
)

// Cache holds the base dataset for the life of the process. It loads on first
// access and is dropped only by Invalidate, which the file watcher calls when
// the source file changes. Failed loads are not cached.
type Cache struct {
	source  Source
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	mu         sync.RWMutex
	current    *Dataset
	generation uint64
}

// NewCache creates an empty cache over source
func NewCache(source Source, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Cache {
	return &Cache{
		source:  source,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Get returns the cached dataset, loading it if needed
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	c.mu.RLock()
	ds := c.current
	c.mu.RUnlock()

	if ds != nil {
		c.metrics.RecordCacheHit()
		return ds, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// another caller may have loaded while we waited for the lock
	if c.current != nil {
		c.metrics.RecordCacheHit()
		return c.current, nil
	}

	c.metrics.RecordCacheMiss()
	ds, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Error(ctx, "[CACHE_LOAD_ERROR] Failed to load dataset", logging.Fields{
			"source": c.source.Name(),
		}, err)
		return nil, err
	}

	c.current = ds
	c.generation++
	return ds, nil
}

// Invalidate drops the cached dataset; the next Get reloads it
func (c *Cache) Invalidate(reason string) {
	c.mu.Lock()
	hadDataset := c.current != nil
	c.current = nil
	c.mu.Unlock()

	c.metrics.RecordCacheInvalidation(reason)
	c.logger.Info(context.Background(), "[CACHE_INVALIDATE] Dataset cache invalidated", logging.Fields{
		"source":      c.source.Name(),
		"reason":      reason,
		"had_dataset": hadDataset,
	})
}

// Loaded reports whether a dataset is currently cached
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// Generation counts successful loads since the cache was created
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// WatchFile invalidates the cache whenever path is written, created, renamed
// or removed. The parent directory is watched so that editors replacing the
// file are seen. The watcher stops when ctx is cancelled.
func (c *Cache) WatchFile(ctx context.Context, path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve dataset path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	c.logger.Info(ctx, "[CACHE_WATCH_START] Watching dataset for changes", logging.Fields{
		"path": target,
	})

	go c.watch(ctx, watcher, target)
	return nil
}

func (c *Cache) watch(ctx context.Context, watcher *fsnotify.Watcher, target string) {
	defer watcher.Close()

	log := c.logger.WithFields(logging.Fields{"path": target})

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			log.Info(context.Background(), "[CACHE_WATCH_STOP] Dataset watch stopped", logging.Fields{})
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&relevant == 0 {
				continue
			}
			log.Debug(ctx, "[CACHE_WATCH_EVENT] Dataset file changed", logging.Fields{
				"op": event.Op.String(),
			})
			c.Invalidate(ReasonFileChanged)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error(ctx, "[CACHE_WATCH_ERROR] Watcher error", logging.Fields{}, err)
		}
	}
}
