package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	code := exitFatal
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	slog.Error("Run failed", "error", err, "exit_code", code)
	stop()
	os.Exit(code)
}
