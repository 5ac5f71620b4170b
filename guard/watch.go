package guard

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the guard's policy whenever the file at path changes. It
// blocks until the context is cancelled, so callers run it in its own
// goroutine. A reload that fails to parse keeps the previous policy.
func (g *Guard) Watch(ctx context.Context, path string, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			p, err := LoadPolicyFile(path)
			if err != nil {
				log.Warn("policy reload failed; keeping previous policy",
					slog.String("path", path), slog.String("err", err.Error()))
				continue
			}
			g.SetPolicy(p)
			log.Info("policy reloaded", slog.String("path", path), slog.String("policy", p.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("policy watcher error", slog.String("err", err.Error()))
		}
	}
}
