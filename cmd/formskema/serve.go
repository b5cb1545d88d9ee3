package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP validation server",
		Long:  `Loads every schema definition in --dir (form name = file stem) and serves POST /forms/{name}/validate.`,
		RunE:  runServe,
	}
	cmd.Flags().String("dir", ".", "Directory containing schema definitions")
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")
	port, _ := cmd.Flags().GetString("port")

	forms, err := server.LoadForms(dir, formskema.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	logger.Info("forms loaded", "dir", dir, "count", len(forms))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.New(server.Config{Forms: forms, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}
