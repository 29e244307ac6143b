// cmd/river-shifttags/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tamzrod/river-shifttags/internal/config"
	"github.com/tamzrod/river-shifttags/internal/logging"
	"github.com/tamzrod/river-shifttags/internal/shift"
	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitEnvironment = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	prog := ""
	if len(argv) > 0 {
		prog = filepath.Base(argv[0])
	}

	// --------------------
	// Validate arguments (no protocol traffic before this passes)
	// --------------------

	args, err := config.ParseArgs(argv)
	if err != nil {
		var rerr *config.RangeError
		if errors.As(err, &rerr) {
			fmt.Fprintln(stdout, rerr.Error())
		} else {
			fmt.Fprintln(stdout, config.Usage(prog))
		}
		return exitUsage
	}

	// --------------------
	// Load + validate settings
	// --------------------

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: settings load failed: %v\n", prog, err)
		return exitEnvironment
	}
	if err := config.ValidateSettings(settings); err != nil {
		fmt.Fprintf(stderr, "%s: settings validation failed: %v\n", prog, err)
		return exitEnvironment
	}

	log := logging.New(settings.Log.Level, settings.Log.Format, stderr)

	// --------------------
	// Connect + rotate
	// --------------------

	client, err := wayland.Connect(wayland.Config{
		Socket:     settings.Socket,
		Display:    settings.Display,
		RuntimeDir: settings.RuntimeDir,
	}, log)
	if err != nil {
		log.Error("compositor connection failed", "err", err)
		return exitEnvironment
	}
	defer client.Close()

	err = shift.Run(ctx, client, shift.Options{
		TagCount:  args.TagCount,
		Mode:      args.Mode,
		Direction: args.Direction,
		Stdout:    stdout,
		Logger:    log,
	})
	if err != nil {
		var missing *shift.MissingGlobalsError
		if errors.As(err, &missing) {
			log.Error("compositor lacks required protocols", "missing", missing.Interfaces)
		} else {
			log.Error("rotation failed", "err", err)
		}
		return exitEnvironment
	}

	return exitOK
}
