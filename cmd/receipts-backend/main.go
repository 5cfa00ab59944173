package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asepeyo/receipts-backend/pkg/apiserver"
	"github.com/asepeyo/receipts-backend/pkg/config"
	"github.com/asepeyo/receipts-backend/pkg/hierarchy"
	"github.com/asepeyo/receipts-backend/pkg/logger"
	"github.com/asepeyo/receipts-backend/pkg/version"
	log "github.com/sirupsen/logrus"
)

func main() {
	err := run()
	if err != nil {
		log.Errorf("fatal: %s", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logHandler, err := logger.GetLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	bt, _ := version.BuildTime()
	logHandler.Infof("receipts-backend version %s built on %s", version.Version(), bt)

	if cfg.Google.CredentialsJSON == "" || cfg.Google.DelegatedUser == "" {
		logHandler.Warnf("google directory credentials are not configured, hierarchy lookups will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Each request gets its own resolver and with it a fresh delegated
	// credential.
	resolvers := func(ctx context.Context) (*hierarchy.Resolver, error) {
		return hierarchy.NewFromConfig(ctx, cfg, logHandler)
	}

	handler := apiserver.New(resolvers, logHandler)
	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: handler.Router(),
	}

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			logHandler.WithError(err).Error("HTTP server stopped")
		}
		cancel()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signals
		logHandler.Infof("received signal %s, terminating", sig)
		cancel()
	}()

	logHandler.Infof("ready to accept requests on %s", cfg.ListenAddress)
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shut down http server: %w", err)
	}

	return nil
}
