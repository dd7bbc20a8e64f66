package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the default polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// DropWatcher watches the drop directory for new .json files using
// fsnotify. Files are handled sequentially: the engine serves a single
// human operator, so there is nothing to gain from parallel admission.
type DropWatcher struct {
	drop     string
	handler  func(path string)
	debounce time.Duration
}

// NewDropWatcher creates a watcher for the drop directory.
func NewDropWatcher(drop string, handler func(path string)) *DropWatcher {
	return &DropWatcher{
		drop:     drop,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Run watches the drop directory for new proposal files. Blocks until
// ctx is cancelled.
func (w *DropWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.drop); err != nil {
		return err
	}

	// ready collects paths that passed debounce. A single timer resets
	// on each event; when it fires, the batch flushes through the
	// handler in name order.
	var mu sync.Mutex
	ready := make(map[string]bool)

	flush := func() {
		mu.Lock()
		batch := make([]string, 0, len(ready))
		for p := range ready {
			batch = append(batch, p)
		}
		ready = make(map[string]bool)
		mu.Unlock()

		sort.Strings(batch)
		for _, p := range batch {
			select {
			case <-ctx.Done():
				return
			default:
			}
			w.handler(p)
		}
	}

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isProposalFile(event.Name) {
				continue
			}

			mu.Lock()
			ready[event.Name] = true
			mu.Unlock()

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}

// PollWatcher watches the drop directory by polling. Fallback for
// filesystems without inotify support (e.g., NFS).
type PollWatcher struct {
	drop     string
	handler  func(path string)
	interval time.Duration
	seen     map[string]bool
}

// NewPollWatcher creates a polling-based watcher.
func NewPollWatcher(drop string, handler func(path string), interval time.Duration) *PollWatcher {
	if interval == 0 {
		interval = pollDefault
	}
	return &PollWatcher{
		drop:     drop,
		handler:  handler,
		interval: interval,
		seen:     make(map[string]bool),
	}
}

// Run polls the drop directory. Blocks until ctx is cancelled.
func (w *PollWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan handles proposal files not seen on a previous pass. The handler
// moves files out of the drop directory, so seen entries are pruned
// once they disappear.
func (w *PollWatcher) scan() {
	entries, err := os.ReadDir(w.drop)
	if err != nil {
		return
	}

	current := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isProposalFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.drop, e.Name())
		current[path] = true
		if w.seen[path] {
			continue
		}
		w.seen[path] = true
		w.handler(path)
	}

	for path := range w.seen {
		if !current[path] {
			delete(w.seen, path)
		}
	}
}
