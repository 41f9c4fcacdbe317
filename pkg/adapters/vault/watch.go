package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// Watch emits the vault-relative path of every markdown document that is
// created or modified on disk, until ctx is cancelled. The watch is purely
// local observation; it never triggers network traffic.
func (v *Vault) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := v.recursiveAdd(watcher); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan string, 16)
	v.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer func() {
			_ = watcher.Close()
			close(out)
			v.setWatcherActive(false)
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				// New directories need watching too.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
					continue
				}
				if filepath.Ext(ev.Name) != ".md" {
					continue
				}
				if strings.HasPrefix(filepath.Base(ev.Name), TempFilePrefix) {
					continue
				}
				rel, err := filepath.Rel(v.Root, ev.Name)
				if err != nil {
					continue
				}
				select {
				case out <- filepath.ToSlash(rel):
				case <-ctx.Done():
					return nil
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				v.logger.Warn("watcher error", "error", err)
			}
		}
	})

	return out, nil
}

func (v *Vault) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(v.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != v.Root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (v *Vault) setWatcherActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.watcherActive = active
}
