package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/splicerope/internal/rope"
)

func (a *app) newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat FILE",
		Short: "Load FILE into a rope and write it back out",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := a.loadRope(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			return a.writeRope(r, "")
		},
	}
}

func (a *app) newSliceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slice FILE POS N",
		Short: "Print N bytes of FILE starting at byte offset POS",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			pos, err := parseOffset("POS", args[1])
			if err != nil {
				return err
			}
			n, err := parseOffset("N", args[2])
			if err != nil {
				return err
			}
			r, err := a.loadRope(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			b, err := r.Slice(pos, n)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(b)
			return err
		},
	}
}

func (a *app) newSpliceCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "splice FILE POS N TEXT",
		Short: "Replace N bytes of FILE at POS with TEXT",
		Long: "Replace N bytes of FILE starting at POS with TEXT and write the result.\n" +
			"N of 0 inserts, an empty TEXT deletes and POS equal to the file size appends.",
		Args: cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			pos, err := parseOffset("POS", args[1])
			if err != nil {
				return err
			}
			n, err := parseOffset("N", args[2])
			if err != nil {
				return err
			}
			r, err := a.loadRope(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.SetSliceString(args[3], pos, n); err != nil {
				return err
			}
			return a.writeRope(r, out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result to this file instead of stdout")
	return cmd
}

func (a *app) newStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print the shape of the rope built from FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := a.loadRope(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			st := r.Stats()
			if asJSON {
				b, err := statsJSON(st)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.stdout, "%s\n", b)
				return err
			}
			_, err = fmt.Fprintf(a.stdout,
				"size:          %d\ndepth:         %d\nleaves:        %d\ninternal:      %d\nempty leaves:  %d\nleaf capacity: %d\nlive nodes:    %d\n",
				st.Size, st.Depth, st.Leaves, st.Internal, st.EmptyLeaves, st.LeafCapacity, st.AllocatorLive)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a JSON object")
	return cmd
}

// statsJSON renders st as a JSON object with stable key order.
func statsJSON(st rope.Stats) ([]byte, error) {
	fields := []struct {
		key string
		val int
	}{
		{"size", st.Size},
		{"depth", st.Depth},
		{"leaves", st.Leaves},
		{"internal", st.Internal},
		{"empty_leaves", st.EmptyLeaves},
		{"leaf_capacity", st.LeafCapacity},
		{"live_nodes", st.AllocatorLive},
	}
	b := []byte(`{}`)
	for _, f := range fields {
		var err error
		if b, err = sjson.SetBytes(b, f.key, f.val); err != nil {
			return nil, errors.Wrapf(err, "encoding %s", f.key)
		}
	}
	return b, nil
}
