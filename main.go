package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/handler"
	"github.com/dmorgan81/imggate/internal/inject"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := log.New(os.Stderr, os.Getenv("DEBUG") != "")
	ctx := log.NewContext(context.Background(), logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	injector := inject.Setup(ctx, cfg)
	h := do.MustInvoke[*handler.Handler](injector)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-image", h.GenerateImage)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     handler.Chain(mux, handler.Recovery(), handler.RequestLogger()),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = injector.Shutdown()
		return err
	})

	if err := group.Wait(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
