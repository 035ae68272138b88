package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"redust/internal/services"
)

// Exit codes. A run where only some files or mods failed exits with
// exitPartial so scripts can tell it apart from a run that stopped.
const (
	exitOK       = 0
	exitFailed   = 1
	exitPartial  = 2
	exitCanceled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	code := exitCode(err)
	if err != nil && code != exitCanceled {
		fmt.Fprintln(os.Stderr, "redust:", err)
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCanceled
	case !services.IsFatal(err):
		return exitPartial
	default:
		return exitFailed
	}
}
