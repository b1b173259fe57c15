package scene

import (
	"path/filepath"
	"sync"
	"time"

	"portalview/internal/utils"

	"github.com/fsnotify/fsnotify"
)

// Reload is the outcome of re-reading a watched scene file.
type Reload struct {
	Scene *Scene
	Err   error
}

// Watcher reloads a scene file whenever it changes on disk. Results are
// delivered on Reloads; only the newest pending result is kept, so a
// frame loop that polls once per frame never falls behind.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reloads chan Reload
	done    chan struct{}
	wg      sync.WaitGroup
}

// settleDelay is how long the file must stay quiet before it is
// reloaded.
const settleDelay = 100 * time.Millisecond

// Watch starts watching filename. The parent directory is watched so
// editors that save by renaming a temporary file are picked up.
func Watch(filename string) (*Watcher, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		reloads: make(chan Reload, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Reloads delivers reloaded scenes, or the error that prevented one.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

func (w *Watcher) run() {
	defer w.wg.Done()
	var settle <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Reload once the burst of events from a save has settled.
			settle = time.After(settleDelay)
		case <-settle:
			settle = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			utils.Warn("scene watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		utils.Warn("scene reload failed: %v", err)
	} else {
		utils.Info("scene %s reloaded", filepath.Base(w.path))
	}
	w.publish(Reload{Scene: s, Err: err})
}

// publish replaces any result the consumer has not picked up yet.
func (w *Watcher) publish(r Reload) {
	for {
		select {
		case w.reloads <- r:
			return
		default:
		}
		select {
		case <-w.reloads:
		default:
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
