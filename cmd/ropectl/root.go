package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/splicerope/internal/config"
	"github.com/dshills/splicerope/internal/rope"
)

// app carries the state shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath   string
	logLevel     string
	leafCapacity int

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "ropectl",
		Short:         "Load, edit and inspect files through a mutable rope",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a .toml or .yaml configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.IntVar(&a.leafCapacity, "leaf-capacity", 0, "bytes per rope leaf")

	root.AddCommand(
		a.newCatCmd(),
		a.newSliceCmd(),
		a.newSpliceCmd(),
		a.newStatsCmd(),
		a.newRunCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("leaf-capacity") {
		cfg.Rope.LeafCapacity = a.leafCapacity
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.log.WithFields(logrus.Fields{
		"leaf_capacity": cfg.Rope.LeafCapacity,
		"allocator":     cfg.Rope.Allocator,
	}).Debug("configuration loaded")
	return nil
}

// newLogger builds a logger writing to w. Text output is colored when w
// is a terminal.
func newLogger(lc config.LogConfig, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)

	if lc.Format == config.FormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
		return log, nil
	}
	tty := isTerminal(w)
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:   tty,
		DisableColors: !tty,
		FullTimestamp: true,
	})
	return log, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// loadRope reads path into a rope built with the configured options.
func (a *app) loadRope(path string) (*rope.Rope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	opts := append(a.cfg.RopeOptions(), rope.WithLogger(a.log))
	r, err := rope.FromReader(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	a.log.WithFields(logrus.Fields{
		"path": path,
		"size": r.Size(),
	}).Debug("file loaded")
	return r, nil
}

// writeRope writes r to the file at out, or to stdout when out is empty.
func (a *app) writeRope(r *rope.Rope, out string) error {
	if out == "" {
		_, err := r.WriteTo(a.stdout)
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", out)
	}
	if _, err := r.WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", out)
	}
	return errors.Wrapf(f.Close(), "closing %s", out)
}

func parseOffset(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", name)
	}
	return v, nil
}
