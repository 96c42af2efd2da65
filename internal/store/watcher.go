package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tallyview/tally/log"
)

// Watcher reports external writes to the ledger database so the timeline
// can refresh without polling. It watches the parent directory because
// sqlite rotates through journal and wal siblings on commit.
type Watcher struct {
	fs   *fsnotify.Watcher
	base string

	// Changes receives one signal per burst of writes. The channel has a
	// one-slot buffer; an unread signal absorbs further bursts.
	Changes chan struct{}

	closeOnce sync.Once

	// debounce rapid change storms down to one signal
	lastEvent time.Time
	debounce  time.Duration
}

// Watch starts watching the database at dbPath. Close releases the watch.
func Watch(dbPath string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create db watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(dbPath)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch db directory: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		base:     filepath.Base(dbPath),
		Changes:  make(chan struct{}, 1),
		debounce: 250 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. The Changes channel stops receiving but stays
// open so pending readers drain safely.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fs.Close() })
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Only the database and its -wal/-journal siblings matter.
			if !strings.HasPrefix(filepath.Base(event.Name), w.base) {
				continue
			}

			now := time.Now()
			if now.Sub(w.lastEvent) < w.debounce {
				continue
			}
			w.lastEvent = now

			select {
			case w.Changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WarningLog.Printf("db watcher: %v", err)
		}
	}
}
