package main

import (
	"chatapp/internal"
	"chatapp/runtime"
	"chatapp/runtime/workers"
	"chatapp/ui"
	"chatapp/wire"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gookit/color"
)

// Exit codes of the chat client.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("chatapp: %v", err))
	}
	os.Exit(code)
}

// run acquires every local resource (config, terminal, log file, socket)
// before any worker starts, so a failure there stops the process with a clear
// diagnostic and nothing to tear down.
func run() (int, error) {
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	codec, err := wire.NewCodec(config.Codec)
	if err != nil {
		return exitConfig, err
	}
	if err := ui.CheckTerminal(); err != nil {
		return exitRuntime, err
	}

	// The terminal belongs to the interface: logs go to a file.
	logFile, err := tea.LogToFile(config.LogFile, "chatapp")
	if err != nil {
		return exitRuntime, fmt.Errorf("log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	level, _ := internal.ParseLogLevel(config.LogLevel)
	log := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})).
		With("session", uuid.NewString(), "identity", config.Identity)

	remote, err := workers.Resolve(config.PeerAddr)
	if err != nil {
		return exitRuntime, err
	}
	conn, err := workers.Bind(config.BindAddr)
	if err != nil {
		return exitRuntime, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The engine owns conn from here on and closes it on every exit path.
	engine := runtime.NewEngine(log, workers.NewSupervisor(log), conn, runtime.Config{
		Identity:       config.Identity,
		Remote:         remote,
		Codec:          codec,
		CommandTimeout: config.CommandTimeout,
		ReadTimeout:    config.ReadTimeout,
		BufferSize:     config.BufferSize,
	})
	terminal := ui.NewTerminalWorker(log, config.Identity, engine.Channels())

	if err := engine.Run(ctx, terminal); err != nil {
		log.Error("Run failed", "error", err)
		return exitRuntime, err
	}
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
