package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/invoiceagent/gateway/backend"
	"github.com/invoiceagent/gateway/directory"
	"github.com/invoiceagent/gateway/directory/cognitoidp"
	"github.com/invoiceagent/gateway/directory/directoryfake"
	"github.com/invoiceagent/gateway/identity"
	"github.com/invoiceagent/gateway/integration"
	"github.com/invoiceagent/gateway/integration/handshake"
	"github.com/invoiceagent/gateway/internal/config"
	"github.com/invoiceagent/gateway/server"
	"github.com/invoiceagent/gateway/session"
	"github.com/invoiceagent/gateway/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	displayAppname(cfg.GetAppName())

	handler, err := buildServer(cfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(cfg config.Config) (*server.Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.GetSessionFile()), 0o700); err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}

	sessions := session.NewStore(storage.NewFile(cfg.GetSessionFile()))
	flow := storage.NewMemory()
	backendClient := backend.New(cfg.GetAPIBaseURL())

	identityService, err := identity.NewService(newDirectory(cfg), backendClient, sessions, flow)
	if err != nil {
		return nil, err
	}

	hs, err := handshake.New(backendClient, flow)
	if err != nil {
		return nil, err
	}

	return server.New(cfg, server.Deps{
		Identity:     identityService,
		Sessions:     sessions,
		Integrations: integration.NewInMemoryRepo(),
		Handshake:    hs,
	})
}

// newDirectory picks the identity directory. Without a configured user pool
// the DEV environment falls back to the in-process fake so the gateway is
// usable end to end on a laptop.
func newDirectory(cfg config.Config) directory.Directory {
	if cfg.GetUserPoolID() == "" && cfg.GetEnv() == "DEV" {
		log.Warn().Msg("no user pool configured, using in-process directory fake")
		return directoryfake.New()
	}
	return cognitoidp.New(cfg.GetDirectoryEndpoint(), cfg.GetDirectoryClientID())
}

func setupLogging(cfg config.Config) {
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
