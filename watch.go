package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chazu/meshedit/pkg/logging"
)

// watchDebounce coalesces the bursts of events editors emit on save.
var watchDebounce = 100 * time.Millisecond

// watchScript evaluates the script once and again after every change until
// ctx is cancelled. The parent directory is watched so that editors which
// replace the file on save are still seen.
func watchScript(ctx context.Context, script string, emit func([]byte) error) error {
	script = filepath.Clean(script)
	log := logging.With("component", "watch", "script", script)

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatch.Close()

	if err := fsWatch.Add(filepath.Dir(script)); err != nil {
		return err
	}

	reload := func() {
		source, err := os.ReadFile(script)
		if err != nil {
			log.Warn("cannot read script", "err", err)
			return
		}
		if err := emit(source); err != nil {
			log.Error("cannot emit result", "err", err)
		}
	}
	reload()

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-fsWatch.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != script {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				log.Debug("script changed", "op", e.Op.String())
				timer.Reset(watchDebounce)
			}
		case err, ok := <-fsWatch.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-timer.C:
			reload()
		}
	}
}
