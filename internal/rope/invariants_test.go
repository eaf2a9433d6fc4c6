package rope

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		damage func(r *Rope)
	}{
		{"stale internal count", func(r *Rope) {
			r.node(r.root).count++
		}},
		{"leaf over capacity", func(r *Rope) {
			leaf := r.node(r.node(r.root).left).left
			r.node(leaf).count = 5
		}},
		{"single child", func(r *Rope) {
			r.node(r.node(r.root).left).right = nilNode
		}},
		{"wrong parent link", func(r *Rope) {
			root := r.node(r.root)
			r.node(root.right).parent = root.left
		}},
		{"root with parent", func(r *Rope) {
			r.node(r.root).parent = r.node(r.root).left
		}},
		{"shared subtree", func(r *Rope) {
			root := r.node(r.root)
			left := r.node(root.left)
			r.node(root.right).left = left.left
			r.node(left.left).parent = root.right
		}},
		{"released child", func(r *Rope) {
			r.alloc.Deallocate(r.node(r.root).right)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRope(t, "hello world")
			tt.damage(r)
			err := r.Validate()
			assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
		})
	}
}
