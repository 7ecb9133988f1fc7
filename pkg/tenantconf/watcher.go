package tenantconf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// LegacyWatcher invalidates cached configurations when the legacy on-disk
// config files change, so tenants still served from files pick up edits
// without an API call. The directory is flat: one <slug>.conf per tenant.
type LegacyWatcher struct {
	dir      string
	resolver *Resolver
	watcher  *fsnotify.Watcher
	log      *logrus.Logger
	done     chan struct{}
}

// NewLegacyWatcher watches dir for changes to *.conf files.
func NewLegacyWatcher(dir string, resolver *Resolver, log *logrus.Logger) (*LegacyWatcher, error) {
	if log == nil {
		log = logrus.New()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &LegacyWatcher{
		dir:      dir,
		resolver: resolver,
		watcher:  watcher,
		log:      log,
		done:     make(chan struct{}),
	}, nil
}

// Start processes filesystem events until Stop is called. It blocks; run it
// on its own goroutine.
func (w *LegacyWatcher) Start() {
	w.log.Infof("Watching legacy config directory %s", w.dir)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slug, ok := slugFromPath(event.Name)
			if !ok {
				continue
			}
			w.log.Infof("Legacy config changed for %s (%s), invalidating", slug, event.Op)
			w.resolver.Invalidate(slug)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("Watcher error: %v", err)
		}
	}
}

// Stop ends event processing and releases the watcher.
func (w *LegacyWatcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

// slugFromPath maps a legacy config file path to its tenant slug.
func slugFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".conf") {
		return "", false
	}
	slug := strings.TrimSuffix(base, ".conf")
	if slug == "" {
		return "", false
	}
	return slug, true
}
