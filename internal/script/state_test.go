package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splicerope/internal/rope"
)

func newState(t *testing.T, text string, opts ...StateOption) *State {
	t.Helper()
	r, err := rope.FromString(text, rope.WithLeafCapacity(4))
	require.NoError(t, err)
	s, err := NewState(r, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStateNilRope(t *testing.T) {
	_, err := NewState(nil)
	assert.Error(t, err)
}

func TestDoStringEditsRope(t *testing.T) {
	s := newState(t, "hello world")

	err := s.DoString(context.Background(), `
		rope.set_slice(0, 5, "HI")
		rope.set_slice(rope.size(), 0, "!")
		assert(rope.slice(3, 5) == "world")
		assert(rope.validate())
	`)
	require.NoError(t, err)
	assert.Equal(t, "HI world!", s.Rope().String())
}

func TestDoStringText(t *testing.T) {
	s := newState(t, "hello world")
	require.NoError(t, s.DoString(context.Background(), `result = rope.text():upper()`))
	assert.Equal(t, lua.LString("HELLO WORLD"), s.L.GetGlobal("result"))
}

func TestDoStringStats(t *testing.T) {
	s := newState(t, "hello world")
	require.NoError(t, s.DoString(context.Background(), `st = rope.stats()`))

	st, ok := s.L.GetGlobal("st").(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, lua.LNumber(11), st.RawGetString("size"))
	assert.Equal(t, lua.LNumber(2), st.RawGetString("depth"))
	assert.Equal(t, lua.LNumber(4), st.RawGetString("leaves"))
	assert.Equal(t, lua.LNumber(3), st.RawGetString("internal"))
	assert.Equal(t, lua.LNumber(0), st.RawGetString("empty"))
}

func TestDoStringRopeErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"slice out of range", `rope.slice(6, 6)`, "out of bounds"},
		{"set_slice out of range", `rope.set_slice(12, 0, "x")`, "out of bounds"},
		{"negative position", `rope.slice(-1, 1)`, "out of bounds"},
		{"missing argument", `rope.set_slice(0, 1)`, "string expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, "hello world")
			err := s.DoString(context.Background(), tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, "hello world", s.Rope().String())
		})
	}
}

func TestRopeErrorCanBeCaught(t *testing.T) {
	s := newState(t, "hello world")
	require.NoError(t, s.DoString(context.Background(), `
		ok, msg = pcall(rope.slice, 100, 1)
	`))
	assert.Equal(t, lua.LFalse, s.L.GetGlobal("ok"))
	assert.Contains(t, s.L.GetGlobal("msg").String(), "out of bounds")
}

func TestDoStringSyntaxError(t *testing.T) {
	s := newState(t, "")
	err := s.DoString(context.Background(), `invalid lua code !!!`)
	assert.Error(t, err)
}

func TestDoStringTimeout(t *testing.T) {
	s := newState(t, "", WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := s.DoString(context.Background(), `while true do end`)
	assert.True(t, errors.Is(err, ErrExecutionTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)

	// the state is usable after a timeout
	require.NoError(t, s.DoString(context.Background(), `x = 1`))
}

func TestDoStringCancelled(t *testing.T) {
	s := newState(t, "", WithTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := s.DoString(ctx, `while true do end`)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, errors.Is(err, ErrExecutionTimeout))
}

func TestDoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edit.lua")
	require.NoError(t, os.WriteFile(path, []byte(`rope.set_slice(6, 5, "there")`), 0o644))

	s := newState(t, "hello world")
	require.NoError(t, s.DoFile(context.Background(), path))
	assert.Equal(t, "hello there", s.Rope().String())

	err := s.DoFile(context.Background(), filepath.Join(dir, "missing.lua"))
	assert.Error(t, err)
}

func TestPrintRedirect(t *testing.T) {
	var out bytes.Buffer
	s := newState(t, "hello world", WithOutput(&out))

	require.NoError(t, s.DoString(context.Background(), `print(rope.size(), rope.slice(0, 5), true, nil)`))
	assert.Equal(t, "11\thello\ttrue\tnil\n", out.String())
}

func TestClosedState(t *testing.T) {
	s := newState(t, "hello")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	err := s.DoString(context.Background(), `x = 1`)
	assert.True(t, errors.Is(err, ErrStateClosed))
	err = s.DoFile(context.Background(), "edit.lua")
	assert.True(t, errors.Is(err, ErrStateClosed))
}
