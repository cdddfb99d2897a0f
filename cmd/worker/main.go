// Command worker runs generation jobs without serving HTTP. It discovers jobs
// queued by API processes through the sweeper.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grivax/grivax-api/internal/container"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build application")
	}
	defer func() {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close application")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if err := c.GenerationContainer.Worker.Subscribe(gctx); err != nil {
		logrus.WithError(err).Fatal("Failed to subscribe generation worker")
	}
	g.Go(func() error {
		return c.GenerationContainer.Worker.Run(gctx)
	})
	g.Go(func() error {
		return c.GenerationContainer.Sweeper.Start(gctx)
	})

	logrus.Info("Generation worker started")
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Worker stopped with error")
	}
}
