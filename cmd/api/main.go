package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	srv := &http.Server{
		Addr:              ":" + c.Settings.Port,
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

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
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logrus.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
	}
}
