package modelgen

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before
// regenerating.
const DefaultDebounce = 200 * time.Millisecond

// Watch runs the generator once, then again each time the configuration or
// a Go source file of the package changes, until ctx is cancelled.
// Generation errors are logged and do not stop the watch.
func Watch(ctx context.Context, cfg Config, debounce time.Duration) error {
	log := logger(cfg)
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Dir(cfg.ConfigFile)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if cfgDir := filepath.Dir(cfg.ConfigFile); filepath.Clean(cfgDir) != filepath.Clean(dir) {
		if err := fsw.Add(cfgDir); err != nil {
			return fmt.Errorf("watching %s: %w", cfgDir, err)
		}
	}

	var (
		mu      sync.Mutex
		lastOut string
	)
	generate := func() {
		mu.Lock()
		defer mu.Unlock()
		path, err := Run(cfg)
		if err != nil {
			log.Error("generation failed", "error", err)
			return
		}
		lastOut = path
	}
	generate()

	d := newDebouncer(debounce, generate)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			mu.Lock()
			out := lastOut
			mu.Unlock()
			if !relevant(event, cfg.ConfigFile, out) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			d.trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether event should trigger regeneration. Writes to the
// generated file itself and to test files are ignored.
func relevant(event fsnotify.Event, configFile, output string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == filepath.Clean(configFile) {
		return true
	}
	if output != "" && name == filepath.Clean(output) {
		return false
	}
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// debouncer coalesces bursts of triggers into one call of fn.
type debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
