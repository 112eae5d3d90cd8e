package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// redirectLogs sends slog output to path while a station UI owns the
// terminal. The returned func restores stderr logging and closes the file.
func redirectLogs(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostic log: %w", err)
	}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() {
		slog.SetDefault(prev)
		if err := f.Close(); err != nil {
			logErrf("failed to close diagnostic log: %v\n", err)
		}
	}, nil
}

// errPanic marks a worker error recovered from a panic.
var errPanic = errors.New("panic")

// restartDelay is the pause before a panicked background worker runs again.
var restartDelay = time.Second

// guard runs fn and turns a panic into an error so the TUI worker cannot
// take the station down without restoring the terminal.
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("wsim: panic in worker", "worker", name, "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("%s: %w: %v", name, errPanic, r)
			}
		}()
		return fn()
	}
}

// background runs a supporting worker that must never end the station. A
// panic restarts it after restartDelay; an error is logged and the worker
// stays down. It always returns nil so the errgroup context survives.
func background(ctx context.Context, name string, fn func() error) func() error {
	run := guard(name, fn)
	return func() error {
		for {
			err := run()
			if ctx.Err() != nil {
				return nil
			}
			if err == nil {
				slog.Debug("wsim: worker finished", "worker", name)
				return nil
			}
			if !errors.Is(err, errPanic) {
				slog.Error("wsim: worker failed", "worker", name, "error", err)
				return nil
			}
			slog.Warn("wsim: restarting worker", "worker", name, "delay", restartDelay)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(restartDelay):
			}
		}
	}
}

// runProgram runs the TUI and calls done when it exits, whatever the cause.
func runProgram(program *tea.Program, done func()) error {
	defer done()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
