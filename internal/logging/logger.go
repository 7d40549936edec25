// Package logging provides categorized structured logging for december.
// Each subsystem logs through a named zap logger so log output can be
// filtered per category. Until Initialize is called every logger is a no-op,
// which keeps library use (and tests) silent by default.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryBoot         Category = "boot"         // Startup and wiring
	CategoryPerception   Category = "perception"   // Request classification
	CategoryArticulation Category = "articulation" // Response emission
	CategoryCatalog      Category = "catalog"      // Example catalog
	CategorySession      Category = "session"      // Conversation sessions
	CategoryStore        Category = "store"        // SQLite persistence
)

var (
	mu         sync.RWMutex
	root       *zap.Logger
	categories map[string]bool
	loggers    = make(map[Category]*zap.SugaredLogger)
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// JSON selects the production JSON encoder instead of console output.
	JSON bool

	// Categories enables a subset of categories. Empty means all enabled.
	Categories map[string]bool
}

// Initialize builds the root logger. Safe to call more than once; the last
// call wins. Pass Options{} for info-level console logging.
func Initialize(opts Options) error {
	cfg := zap.NewDevelopmentConfig()
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return err
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger
	categories = opts.Categories
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// SetLogger installs an externally constructed zap logger as the root.
// Used by the CLI, which owns logger lifecycle.
func SetLogger(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = logger
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Get returns the sugared logger for a category. Returns a no-op logger when
// logging is uninitialized or the category is disabled.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	enabled := root != nil && (categories == nil || categories[string(category)])
	base := root
	mu.RUnlock()

	if !enabled || base == nil {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := base.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

// Convenience wrappers, one pair per category, matching call sites like
// logging.Perception("classified %s", id).

func Boot(format string, args ...interface{})  { Get(CategoryBoot).Infof(format, args...) }
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debugf(format, args...)
}

func Perception(format string, args ...interface{}) {
	Get(CategoryPerception).Infof(format, args...)
}
func PerceptionDebug(format string, args ...interface{}) {
	Get(CategoryPerception).Debugf(format, args...)
}
func PerceptionWarn(format string, args ...interface{}) {
	Get(CategoryPerception).Warnf(format, args...)
}

func Articulation(format string, args ...interface{}) {
	Get(CategoryArticulation).Infof(format, args...)
}
func ArticulationDebug(format string, args ...interface{}) {
	Get(CategoryArticulation).Debugf(format, args...)
}
func ArticulationWarn(format string, args ...interface{}) {
	Get(CategoryArticulation).Warnf(format, args...)
}

func Catalog(format string, args ...interface{}) {
	Get(CategoryCatalog).Infof(format, args...)
}
func CatalogDebug(format string, args ...interface{}) {
	Get(CategoryCatalog).Debugf(format, args...)
}
func CatalogWarn(format string, args ...interface{}) {
	Get(CategoryCatalog).Warnf(format, args...)
}

func Session(format string, args ...interface{}) {
	Get(CategorySession).Infof(format, args...)
}
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debugf(format, args...)
}

func Store(format string, args ...interface{}) {
	Get(CategoryStore).Infof(format, args...)
}
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debugf(format, args...)
}
func StoreWarn(format string, args ...interface{}) {
	Get(CategoryStore).Warnf(format, args...)
}
