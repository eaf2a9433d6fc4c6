package script

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splicerope/internal/rope"
)

// DefaultTimeout bounds a single DoString or DoFile call.
const DefaultTimeout = 5 * time.Second

// State is a sandboxed Lua state bound to one rope.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes calls
// made from Go.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	rope    *rope.Rope
	out     io.Writer
	timeout time.Duration
	log     logrus.FieldLogger
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the per-run timeout. Zero or less disables it.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger for run events.
func WithLogger(l logrus.FieldLogger) StateOption {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// NewState creates a sandboxed Lua state whose rope table operates on r.
func NewState(r *rope.Rope, opts ...StateOption) (*State, error) {
	if r == nil {
		return nil, errors.New("script: nil rope")
	}
	s := &State{
		rope:    r,
		out:     io.Discard,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L, s.out)
	registerRope(s.L, r)
	return s, nil
}

// openSafeLibraries opens only the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoString runs code. The run stops when ctx is done or the timeout
// elapses.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, "<string>", func() error {
		return s.L.DoString(code)
	})
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, path, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) run(ctx context.Context, name string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	start := time.Now()
	err := doWithRecovery(fn)
	log := s.log.WithFields(logrus.Fields{
		"script":   name,
		"duration": time.Since(start),
	})

	if err != nil {
		switch ctxErr := ctx.Err(); {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			err = errors.Wrapf(ErrExecutionTimeout, "%s: exceeded %s", name, s.timeout)
		case ctxErr != nil:
			err = errors.Wrapf(ctxErr, "%s", name)
		default:
			err = errors.Wrapf(err, "%s", name)
		}
		log.WithError(err).Debug("script failed")
		return err
	}
	log.Debug("script finished")
	return nil
}

// doWithRecovery executes fn, turning a panic into an error.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Rope returns the rope the state edits.
func (s *State) Rope() *rope.Rope {
	return s.rope
}

// Close releases the Lua state. Later runs return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
