package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/confluence"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// EventCallback is called after a watcher-driven change to the page index.
// kind is one of "converted", "removed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the documentation root and re-converts
// documents as their sources change, until ctx is cancelled. It calls cb (if
// non-nil) after each successful index mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale index
// entries whose files no longer exist on disk.
//
// Title lookups use the tree from the last full scan, so a page renamed via
// its front matter is picked up by referencing documents on the next full
// sync rather than immediately.
func Watch(ctx context.Context, db *DB, store *storage.FS, conv *confluence.Converter, out *storage.FS, assetsDir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, out, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and convert contents.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					convertNewDir(db, store, conv, out, root, absPath, assetsDir, logger, cb)
					continue
				}
			}

			// Only Markdown sources from here on.
			if !strings.HasSuffix(absPath, storage.MarkdownExt) {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if path.Base(path.Dir(rel)) == assetsDir {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if convErr := convertFile(db, conv, out, rel, data); convErr != nil {
					logger.Warn("watcher: convert failed", slog.String("path", rel), slog.String("error", convErr.Error()))
					continue
				}
				logger.Debug("watcher: converted", slog.String("path", rel))
				if cb != nil {
					cb("converted", rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeletePage(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				if out != nil {
					_ = out.Delete(OutputPath(rel))
				}
				logger.Debug("watcher: removed", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new path
				// arrives as a separate Create event if it stays within a
				// watched dir. Delete the old entry now and schedule a
				// reconciliation pass to catch any stragglers.
				if delErr := db.DeletePage(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					if out != nil {
						_ = out.Delete(OutputPath(rel))
					}
					logger.Debug("watcher: rename old removed", slog.String("path", rel))
					if cb != nil {
						cb("removed", rel)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds dir and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

// convertNewDir converts any Markdown files already present in a newly
// created directory.
func convertNewDir(db *DB, store *storage.FS, conv *confluence.Converter, out *storage.FS, root, dir, assetsDir string, logger *slog.Logger, cb EventCallback) {
	relDir, err := filepath.Rel(root, dir)
	if err != nil {
		return
	}
	metas, err := store.List(filepath.ToSlash(relDir))
	if err != nil {
		logger.Warn("watcher: list new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	for _, m := range metas {
		if path.Base(path.Dir(m.Path)) == assetsDir {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			continue
		}
		if err := convertFile(db, conv, out, m.Path, data); err != nil {
			logger.Warn("watcher: convert failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if cb != nil {
			cb("converted", m.Path)
		}
	}
}

// reconcileAfterRename removes index entries whose source files no longer
// exist on disk.
func reconcileAfterRename(db *DB, store *storage.FS, out *storage.FS, logger *slog.Logger, cb EventCallback) {
	metas, err := store.List("")
	if err != nil {
		logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("watcher: reconcile checksums failed", slog.String("error", err.Error()))
		return
	}
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeletePage(p); err != nil {
			logger.Warn("watcher: reconcile delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if out != nil {
			_ = out.Delete(OutputPath(p))
		}
		logger.Debug("watcher: reconciled stale", slog.String("path", p))
		if cb != nil {
			cb("removed", p)
		}
	}
}
