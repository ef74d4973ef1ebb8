package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soochol/filechat/internal/api"
	"github.com/soochol/filechat/internal/chat"
	"github.com/soochol/filechat/internal/config"
	"github.com/soochol/filechat/internal/logging"
	"github.com/soochol/filechat/internal/provider"
	"github.com/soochol/filechat/internal/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := serve(); err != nil {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println("filechat v0.1.0")
	fmt.Println("Usage: filechat serve")
}

func serve() error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	cfg.LogSummary(logger)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	azure := provider.NewAzureOpenAIProvider(provider.AzureOptions{
		Endpoint:   cfg.AzureOpenAI.Endpoint,
		APIKey:     cfg.AzureOpenAI.APIKey,
		Deployment: cfg.AzureOpenAI.Deployment,
		APIVersion: cfg.AzureOpenAI.APIVersion,
		Timeout:    time.Duration(cfg.AzureOpenAI.TimeoutSeconds) * time.Second,
	})

	srv := api.NewServer(store, chat.NewAnalyzer(azure))
	srv.SetUploadLimits(cfg.Uploads.MaxSize, cfg.Uploads.MaxFiles)
	srv.SetStaticDir(cfg.Static.Dir)
	srv.SetFrontendInfo(api.FrontendInfo{
		AzureEndpoint:  cfg.Frontend.AzureEndpoint,
		DeploymentName: cfg.AzureOpenAI.Deployment,
		APIVersion:     cfg.AzureOpenAI.APIVersion,
		APIURL:         cfg.Frontend.APIURL,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting filechat server", "addr", httpServer.Addr, "upload_dir", store.Dir())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
