package eventlog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch notifies on writes to the shared journal's directory — the
// signal a caller uses to re-run Sync after another process (a `git
// pull` followed by a merge, or a teammate's own babel process) has
// appended to the shared journal. It watches the directory rather than
// the file itself so it survives the file being recreated, which some
// merge tools do instead of appending in place.
//
// Watch is advisory only: a missed or coalesced event just means the
// caller's next explicit Sync() call (e.g. on the next command
// invocation) catches up. It is not part of the append-only contract.
func (l *EventLog) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(l.sharedPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	changed := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(changed)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(l.sharedPath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return changed, nil
}
