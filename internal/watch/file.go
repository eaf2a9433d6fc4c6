package watch

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the coalescing window. Zero or less selects
// DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithBufferSize sets the capacity of the event and error channels.
func WithBufferSize(n int) Option {
	return func(w *FileWatcher) {
		if n > 0 {
			w.bufSize = n
		}
	}
}

// WithLogger sets the logger for dropped events and watcher errors.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.log = l
		}
	}
}

// FileWatcher delivers debounced change events for one file.
type FileWatcher struct {
	path    string
	delay   time.Duration
	bufSize int
	log     logrus.FieldLogger

	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error

	mu       sync.Mutex
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFileWatcher starts watching path, which must exist.
func NewFileWatcher(path string, opts ...Option) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrPathNotExist, "%s", absPath)
		}
		return nil, errors.Wrapf(err, "stat %s", absPath)
	}

	w := &FileWatcher{
		path:    absPath,
		delay:   DefaultDebounce,
		bufSize: 16,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		w.log = l
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "watching %s", filepath.Dir(absPath))
	}

	w.watcher = fsw
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Events returns the debounced event channel. It is closed by Close.
func (w *FileWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. A pending event is discarded.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.events)
	close(w.errors)
	return w.watcher.Close()
}

// processLoop filters events for the file and coalesces them. The
// debounce timer lives in this goroutine, so nothing sends on the
// output channels after Close has waited for it.
func (w *FileWatcher) processLoop() {
	defer w.closedWg.Done()

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	var pending *Event
	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(fsEvent.Name) != w.path {
				continue
			}
			op := convertOp(fsEvent.Op)
			if op == 0 {
				continue
			}
			if pending == nil {
				pending = &Event{Path: w.path}
			}
			pending.Op |= op
			pending.Time = time.Now()
			timer.Reset(w.delay)

		case <-timer.C:
			if pending != nil {
				w.sendEvent(*pending)
				pending = nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *FileWatcher) sendEvent(event Event) {
	select {
	case w.events <- event:
	default:
		w.log.WithField("path", event.Path).Warn("event channel full, dropping event")
	}
}

func (w *FileWatcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		w.log.WithError(err).Warn("error channel full, dropping error")
	}
}
