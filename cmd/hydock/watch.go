package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/desyatkoff/hydock/internal/util"
)

const debounceWindow = 250 * time.Millisecond

// newFileWatcher watches the directories holding the given files. Watching the
// directory rather than the file survives editors that replace files on save.
func newFileWatcher(logger *util.Logger, files ...string) (*fsnotify.Watcher, map[string]bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		full, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		full = filepath.Clean(full)
		targets[full] = true
		dir := filepath.Dir(full)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Debugf("not watching %s: %v", dir, err)
			continue
		}
		dirs[dir] = true
	}
	return watcher, targets, nil
}

// watchFiles forwards debounced change notifications for targets. The name of
// the last changed file is sent; pending notifications are coalesced.
func watchFiles(logger *util.Logger, watcher *fsnotify.Watcher, targets map[string]bool, changes chan<- string) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		last    string
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if !targets[name] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			last = name
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case changes <- last:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("file watcher error: %v", err)
		}
	}
}
