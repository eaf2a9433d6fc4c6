package rope

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func benchRope(b *testing.B, size int, opts ...Option) *Rope {
	b.Helper()
	opts = append([]Option{WithGrowableStack()}, opts...)
	r, err := FromString(strings.Repeat("x", size), opts...)
	if err != nil {
		b.Fatal(err)
	}
	return r
}

func BenchmarkNew(b *testing.B) {
	for _, size := range []int{1 << 10, 1 << 16, 1 << 20} {
		s := []byte(strings.Repeat("x", size))
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				if _, err := New(s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSlice(b *testing.B) {
	r := benchRope(b, 1<<20)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos := rng.Intn(r.Size() - 256)
		if _, err := r.Slice(pos, 256); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSetSlice(b *testing.B) {
	allocators := map[string]func() Allocator{
		"heap":  func() Allocator { return NewHeapAllocator(0) },
		"arena": func() Allocator { return NewArena(0, 0) },
	}
	for name, mk := range allocators {
		b.Run(name, func(b *testing.B) {
			r := benchRope(b, 1<<20, WithAllocator(mk()))
			rng := rand.New(rand.NewSource(1))
			ins := []byte("inserted text")
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				pos := rng.Intn(r.Size() - 32)
				// alternate growth and shrink so the size stays put
				if i%2 == 0 {
					if err := r.SetSlice(ins, pos, 0); err != nil {
						b.Fatal(err)
					}
				} else if err := r.SetSlice(nil, pos, len(ins)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
