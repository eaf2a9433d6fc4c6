// Package script runs Lua edit scripts against a rope.
//
// Scripts see a global table named rope:
//
//	rope.size()              -- byte count
//	rope.slice(pos, n)       -- n bytes starting at pos
//	rope.set_slice(pos, n, s) -- replace n bytes at pos with s
//	rope.text()              -- the whole content
//	rope.stats()             -- {size, depth, leaves, internal, empty}
//	rope.validate()          -- true, or raises
//
// Positions are 0-based byte offsets. A failed rope operation raises a
// Lua error carrying the Go error text.
//
// The state is sandboxed: only the base, table, string and math
// libraries are opened, the loaders (dofile, loadfile, load, loadstring,
// require, module) are removed, and print writes to a configurable
// io.Writer.
//
//	s, err := script.NewState(r, script.WithOutput(os.Stderr))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	err = s.DoString(ctx, `rope.set_slice(0, 5, "HI")`)
package script
