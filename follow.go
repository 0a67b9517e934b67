package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Songmu/flextime"
	"github.com/cenkalti/backoff"
	"github.com/fsnotify/fsnotify"
)

type followAction int

const (
	keepCursor followAction = iota
	resetCursor
)

// transition decides what happens to the read cursor before the next read,
// as a pure function of the previous and current size classifications.
func transition(prev, curr ModificationType) followAction {
	switch curr {
	case Removed:
		// Smaller than last observed: classic truncate-for-rotation.
		// Reread from the start of whatever now occupies the path.
		return resetCursor
	case NoChange:
		// A truncation and its "no net size change" follow-up can both
		// arrive before any bytes are appended; the cursor must not stay
		// beyond the new end of file.
		if prev == Removed {
			return resetCursor
		}
		return keepCursor
	default:
		return keepCursor
	}
}

// Follower drives the per-file cursors from file-change notifications. One
// StatefulFile per watched path; one file's rotation never touches another's
// cursor.
type Follower struct {
	logger       *slog.Logger
	out          io.Writer
	files        map[string]*StatefulFile
	pollInterval time.Duration
	headers      bool
	current      string
}

func NewFollower(logger *slog.Logger, out io.Writer, pollInterval time.Duration) *Follower {
	return &Follower{
		logger:       logger,
		out:          out,
		files:        map[string]*StatefulFile{},
		pollInterval: pollInterval,
	}
}

// Add registers a file whose initial tail has already been emitted and whose
// cursor sits at the end observed during startup.
func (f *Follower) Add(sf *StatefulFile) {
	f.files[sf.Path()] = sf
}

// EnableHeaders makes the follower print a "==> name <==" header whenever
// output switches to a different file.
func (f *Follower) EnableHeaders(current string) {
	f.headers = true
	f.current = current
}

// Run blocks on change notifications and processes each batch sequentially
// until ctx is done. Watch identifiers are the notification event names,
// which key the StatefulFile table.
func (f *Follower) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize watcher: %w", err)
	}
	defer watcher.Close()
	for name := range f.files {
		if err := watcher.Add(name); err != nil {
			return fmt.Errorf("failed to attach watcher to file %s: %w", name, err)
		}
	}

	lastEvent := flextime.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			sf, found := f.files[event.Name]
			if !found {
				continue
			}
			lastEvent = flextime.Now()
			if err := f.handleEvent(ctx, watcher, sf, event); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("failed to watch files: %w", err)
		case <-flextime.After(f.pollInterval):
			// Notifications can be missed or coalesced; a periodic stat
			// pass picks the change up as a plain size delta.
			f.logger.DebugContext(ctx, "no events within poll interval", "idle", flextime.Since(lastEvent))
			for _, sf := range f.files {
				if err := f.syncFile(ctx, sf); err != nil {
					return err
				}
			}
		}
	}
}

func (f *Follower) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, sf *StatefulFile, event fsnotify.Event) error {
	f.logger.DebugContext(ctx, "received event", "name", event.Name, "op", event.Op.String())
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		// Rotation by rename: the path usually reappears once the log
		// manager recreates it, so retry the reopen briefly.
		if err := f.reopen(ctx, sf); err != nil {
			return err
		}
		if err := watcher.Add(sf.Path()); err != nil {
			return fmt.Errorf("failed to rewatch file %s: %w", sf.Path(), err)
		}
		return f.syncFile(ctx, sf)
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		return f.syncFile(ctx, sf)
	default:
		return nil
	}
}

func (f *Follower) reopen(ctx context.Context, sf *StatefulFile) error {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(sf.Reopen, b); err != nil {
		return fmt.Errorf("failed to reopen %s: %w", sf.Path(), err)
	}
	f.logger.InfoContext(ctx, "reopened rotated file", "name", sf.Path())
	return nil
}

// syncFile classifies the file's size delta, resets the cursor when the
// transition calls for it, refreshes the snapshot, and copies every newly
// complete line to the sink.
func (f *Follower) syncFile(ctx context.Context, sf *StatefulFile) error {
	curr, err := sf.Modification()
	if err != nil {
		return err
	}
	if transition(sf.prev, curr) == resetCursor {
		f.logger.DebugContext(ctx, "file shrank, rereading from start", "name", sf.Path(), "state", curr.String())
		sf.ResetCursor()
	}
	sf.prev = curr
	if err := sf.UpdateMetadata(); err != nil {
		return err
	}
	if _, err := sf.CopyNewLines(f.sink(sf)); err != nil {
		return err
	}
	return nil
}

// sink wraps the output so a file header is emitted lazily, only when the
// file actually produces output after another file was printed last.
func (f *Follower) sink(sf *StatefulFile) io.Writer {
	if !f.headers {
		return f.out
	}
	return &headerWriter{follower: f, name: sf.Path()}
}

type headerWriter struct {
	follower *Follower
	name     string
}

func (hw *headerWriter) Write(p []byte) (int, error) {
	if hw.follower.current != hw.name {
		fmt.Fprintf(hw.follower.out, "\n==> %s <==\n", hw.name)
		hw.follower.current = hw.name
	}
	return hw.follower.out.Write(p)
}
