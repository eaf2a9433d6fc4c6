package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/splicerope/internal/script"
	"github.com/dshills/splicerope/internal/watch"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		out      string
		watching bool
	)
	cmd := &cobra.Command{
		Use:   "run SCRIPT FILE",
		Short: "Run a Lua edit script against FILE",
		Long: "Load FILE into a rope, run the Lua SCRIPT against it and write the result.\n" +
			"With --watch, FILE is reloaded and SCRIPT re-run every time SCRIPT changes,\n" +
			"until interrupted.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath, filePath := args[0], args[1]
			if !watching {
				return a.runScript(cmd.Context(), scriptPath, filePath, out)
			}
			return a.watchScript(cmd.Context(), scriptPath, filePath, out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "re-run whenever SCRIPT changes")
	return cmd
}

// runScript performs one load, run and write cycle.
func (a *app) runScript(ctx context.Context, scriptPath, filePath, out string) error {
	log := a.log.WithFields(logrus.Fields{
		"run":    uuid.NewString(),
		"script": scriptPath,
	})

	r, err := a.loadRope(filePath)
	if err != nil {
		return err
	}
	defer r.Close()

	s, err := script.NewState(r,
		script.WithTimeout(a.cfg.Script.Timeout.Std()),
		script.WithOutput(a.stderr),
		script.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DoFile(ctx, scriptPath); err != nil {
		return err
	}
	if err := a.writeRope(r, out); err != nil {
		return err
	}
	log.WithField("size", r.Size()).Info("script applied")
	return nil
}

// watchScript runs the script once and again after every change to it.
// A failing run is logged and the loop keeps going. It returns the
// context error once ctx is done.
func (a *app) watchScript(ctx context.Context, scriptPath, filePath, out string) error {
	w, err := watch.NewFileWatcher(scriptPath, watch.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer w.Close()

	rerun := func() {
		if err := a.runScript(ctx, scriptPath, filePath, out); err != nil && ctx.Err() == nil {
			a.log.WithError(err).Error("script run failed")
		}
	}
	rerun()

	for {
		select {
		case <-ctx.Done():
			a.log.Debug("watch stopped")
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.log.WithFields(logrus.Fields{
				"path": ev.Path,
				"op":   ev.Op.String(),
			}).Info("script changed")
			rerun()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.log.WithError(err).Warn("watcher error")
		}
	}
}
