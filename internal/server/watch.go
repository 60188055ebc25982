package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// WatchData calls reload whenever the data file at path is written or
// replaced. It runs until ctx is cancelled. A failed reload is logged and
// the previous dataset stays active.
func WatchData(ctx context.Context, path string, reload func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and exports often replace the file by rename.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log := logrus.WithField("path", path)
	log.Info("watching data file for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := reload(ctx); err != nil {
				log.Errorf("reload failed, keeping previous dataset: %v", err)
				continue
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}
