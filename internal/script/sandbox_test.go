package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestSandboxRemovesLoaders(t *testing.T) {
	s := newState(t, "")
	for _, name := range removedGlobals {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, lua.LNil, s.L.GetGlobal(name))
		})
	}
}

func TestSandboxLibraries(t *testing.T) {
	s := newState(t, "")

	tests := []struct {
		name    string
		global  string
		present bool
	}{
		{"string", "string", true},
		{"table", "table", true},
		{"math", "math", true},
		{"io", "io", false},
		{"os", "os", false},
		{"debug", "debug", false},
		{"package", "package", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.L.GetGlobal(tt.global)
			if tt.present {
				assert.NotEqual(t, lua.LNil, v)
			} else {
				assert.Equal(t, lua.LNil, v)
			}
		})
	}
}

func TestSandboxBlocksFileAccess(t *testing.T) {
	s := newState(t, "")
	err := s.DoString(context.Background(), `dofile("/etc/passwd")`)
	assert.Error(t, err)
	err = s.DoString(context.Background(), `io.open("/etc/passwd")`)
	assert.Error(t, err)
}

func TestSandboxKeepsBaseFunctions(t *testing.T) {
	s := newState(t, "abc")
	require.NoError(t, s.DoString(context.Background(), `
		local parts = {}
		for i = 0, rope.size() - 1 do
			table.insert(parts, string.byte(rope.slice(i, 1)))
		end
		total = 0
		for _, b in ipairs(parts) do total = total + b end
		ok = pcall(error, "boom")
	`))
	assert.Equal(t, lua.LNumber('a'+'b'+'c'), s.L.GetGlobal("total"))
	assert.Equal(t, lua.LFalse, s.L.GetGlobal("ok"))
}
