package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mobile-next/gesturekit/utils"
)

// DebounceDelay collapses bursts of writes into one reload
const DebounceDelay = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	onChange func(*File)
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error

	mu      sync.Mutex
	current *File
	timer   *time.Timer
	done    chan struct{}
}

// NewWatcher loads path once and returns a watcher that calls onChange with
// every successfully reloaded file. Invalid edits are reported on Errors and
// leave the previous settings in place.
func NewWatcher(path string, onChange func(*File)) (*Watcher, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		errChan:  make(chan error, 1),
		current:  f,
		done:     make(chan struct{}),
	}, nil
}

// Current returns the most recently loaded file
func (w *Watcher) Current() *File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start watches the directory holding the file, so editors that replace
// the file on save are still seen.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	w.watcher = watcher

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(DebounceDelay, w.reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// Reload re-reads the file immediately
func (w *Watcher) Reload() error {
	f, err := Load(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.current = f
	w.mu.Unlock()

	utils.Verbose("Reloaded config from %s", w.path)
	if w.onChange != nil {
		w.onChange(f)
	}
	return nil
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.Reload(); err != nil {
		utils.Info("Ignoring invalid config change: %v", err)
		w.report(fmt.Errorf("reload config: %w", err))
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errChan <- err:
	default:
	}
}

// Errors returns reload and watch errors. Errors are dropped while the channel is full.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Close stops watching and cancels any pending reload
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
