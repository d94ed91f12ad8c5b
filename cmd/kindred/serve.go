package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/scrypster/kindred/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP API server",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stack := buildKinship(store, a.cfg, a.logger)

	addr, stopped, err := server.Start(ctx, a.cfg, server.Dependencies{
		Kinship: stack.service,
		Store:   store,
		Purger:  stack.purger(),
		Limits:  stack.engine.Config(),
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	a.logger.Info("Kindred API running",
		"url", "http://"+addr,
		"store", a.cfg.Storage.StorageEngine,
		"target", a.cfg.Storage.Target(),
		"cache", stack.cache != nil)

	<-stopped
	a.logger.Info("shut down gracefully")
	return nil
}
