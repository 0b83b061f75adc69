// Package inbox watches a drop directory inside the vault: any image file
// placed there is uploaded through the pipeline, its hosted link appended
// to a configured note, and the original removed.
package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halvard/ansuz/internal/imageservice"
	"github.com/halvard/ansuz/internal/storage"
)

// settleDelay is how long a file must stay quiet before it is picked up,
// so half-written drops are not uploaded.
const settleDelay = 500 * time.Millisecond

// Config locates the drop directory and the note receiving the links.
// Both paths are vault-relative; an empty Dir disables the watcher. Mode
// is the rename mode for drop uploads; there is no user to prompt here,
// so callers pass the batch mode.
type Config struct {
	Dir  string
	Note string
	Mode string
}

// Pipeline is the slice of the upload service the watcher needs.
type Pipeline interface {
	UploadNew(ctx context.Context, req imageservice.PasteRequest) (*imageservice.UploadResult, error)
}

// Watch processes drop-directory events until ctx is cancelled. The
// directory is created if missing.
func Watch(ctx context.Context, svc Pipeline, vaultRoot string, cfg Config, logger *slog.Logger) error {
	if cfg.Dir == "" {
		return nil
	}
	dir := filepath.Join(vaultRoot, cfg.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("inbox: started", slog.String("dir", dir), slog.String("note", cfg.Note))

	// pending debounces writes per file until the content settles.
	pending := make(map[string]time.Time)
	sweep := time.NewTicker(200 * time.Millisecond)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox: stopped")
			return nil

		case now := <-sweep.C:
			for path, seen := range pending {
				if now.Sub(seen) < settleDelay {
					continue
				}
				delete(pending, path)
				process(ctx, svc, vaultRoot, cfg, path, logger)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !storage.IsImagePath(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = time.Now()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// process uploads one settled drop file and removes it on success. The
// hosted link is appended at the end of the note.
func process(ctx context.Context, svc Pipeline, vaultRoot string, cfg Config, path string, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("inbox: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if len(data) == 0 {
		return
	}

	if err := ensureNote(filepath.Join(vaultRoot, cfg.Note)); err != nil {
		logger.Warn("inbox: prepare note failed", slog.String("note", cfg.Note), slog.String("error", err.Error()))
		return
	}

	res, err := svc.UploadNew(ctx, imageservice.PasteRequest{
		NotePath:     cfg.Note,
		Cursor:       1 << 30, // clamped to the end of the note
		Data:         data,
		OriginalName: filepath.Base(path),
		Mode:         cfg.Mode,
	})
	if err != nil {
		logger.Warn("inbox: upload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("inbox: remove failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	logger.Info("inbox: image uploaded", slog.String("file", res.FileName), slog.String("url", res.URL))
}

// ensureNote creates the target note (with a trailing newline) when it
// does not exist yet, so appended links start on their own line.
func ensureNote(notePath string) error {
	data, err := os.ReadFile(notePath)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(notePath), 0o755); mkErr != nil {
			return mkErr
		}
		return os.WriteFile(notePath, nil, 0o644)
	}
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return os.WriteFile(notePath, append(data, '\n'), 0o644)
	}
	return nil
}
