package main

import (
	"context"
	"os/signal"
	"syscall"

	"courier-dispatch/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container := app.MustBuildContainer(ctx)
	app.NewRunner().MustRun(container)
}
