package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/mashiike/slogutils"
)

type App struct {
	cli    CLI
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

func New(cli CLI) (*App, error) {
	newHander := func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, opts)
	}
	if cli.LogFormat == "json" {
		newHander = func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewJSONHandler(w, opts)
		}
	}
	middleware := slogutils.NewMiddleware(
		newHander,
		slogutils.MiddlewareOptions{
			ModifierFuncs: map[slog.Level]slogutils.ModifierFunc{
				slog.LevelDebug: slogutils.Color(color.FgBlack),
				slog.LevelInfo:  nil,
				slog.LevelWarn:  slogutils.Color(color.FgYellow),
				slog.LevelError: slogutils.Color(color.FgRed, color.Bold),
			},
			RecordTransformerFuncs: []slogutils.RecordTransformerFunc{
				slogutils.DefaultAttrs(
					"version", Version,
					"app", "gotail",
				),
				func(r slog.Record) slog.Record {
					if r.Level >= slog.LevelInfo && r.Level < slog.LevelError {
						return r
					}
					fs := runtime.CallersFrames([]uintptr{r.PC})
					f, _ := fs.Next()
					r.Add(
						slog.SourceKey,
						&slog.Source{
							Function: f.Function,
							File:     f.File,
							Line:     f.Line,
						},
					)
					return r
				},
			},
			Writer: os.Stderr,
			HandlerOptions: &slog.HandlerOptions{
				Level: cli.LogLevel,
			},
		},
	)
	return &App{
		cli:    cli,
		logger: slog.New(middleware),
		in:     os.Stdin,
		out:    os.Stdout,
	}, nil
}

func (app *App) Run(ctx context.Context) error {
	if len(app.cli.Files) == 0 || (len(app.cli.Files) == 1 && app.cli.Files[0] == "-") {
		return app.tailStdin()
	}

	follower := NewFollower(app.logger, app.out, app.cli.SleepInterval)
	withHeaders := len(app.cli.Files) > 1 && !app.cli.Quiet
	out := bufio.NewWriter(app.out)
	for i, name := range app.cli.Files {
		sf, err := NewStatefulFile(name)
		if err != nil {
			return err
		}
		defer sf.Close()
		if withHeaders {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", name)
		}
		if err := app.emitInitial(sf, out); err != nil {
			return err
		}
		follower.Add(sf)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if !app.cli.Follow {
		return nil
	}

	if withHeaders {
		follower.EnableHeaders(app.cli.Files[len(app.cli.Files)-1])
	}
	app.logger.DebugContext(ctx, "starting follow loop", "files", app.cli.Files, "sleepInterval", app.cli.SleepInterval)
	if err := follower.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	return nil
}

// emitInitial produces the startup "last N lines" output for one file and
// leaves the cursor at the end of what the scan observed, ready for follow.
func (app *App) emitInitial(sf *StatefulFile, w io.Writer) error {
	if app.cli.Lines.FromStart {
		_, err := sf.CopyLinesSkipping(w, app.cli.Lines.Count)
		return err
	}
	br, err := NewBackwardsReader(app.cli.Lines.Count, sf.file)
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", sf.Path(), err)
	}
	if _, err := br.WriteTo(w); err != nil {
		return fmt.Errorf("failed to tail %s: %w", sf.Path(), err)
	}
	// Pin the cursor at the end the scan observed, not at whatever the
	// file has grown to since; growth is the follow loop's business.
	if _, err := sf.file.Seek(br.EndOffset(), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s: %w", sf.Path(), err)
	}
	sf.reader.Reset(sf.file)
	return sf.UpdateCursor()
}

// tailStdin handles the no-FILES form. Standard input cannot seek backward,
// so the last N lines are kept in a ring buffer during one forward pass.
func (app *App) tailStdin() error {
	if app.cli.Follow {
		app.logger.Warn("cannot follow standard input; ignoring --follow")
	}
	out := bufio.NewWriter(app.out)
	defer out.Flush()
	if app.cli.Lines.FromStart {
		return SkipHead(app.in, app.cli.Lines.Count, out)
	}
	return ForwardTail(app.in, app.cli.Lines.Count, out)
}
