package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/moksh2305/secure-chat-application/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the relay together and blocks until a signal or a listener
// failure stops it.
func run(args []string) error {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	config, err := server.NewConfigFromEnv()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&config.Port, "port", config.Port, "TCP port of the line protocol")
	fs.IntVar(&config.HistorySize, "history", config.HistorySize, "number of messages kept for replay")
	fs.StringVar(&config.HTTPAddr, "http", config.HTTPAddr, "address of the HTTP front end (WebSocket, health, metrics)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	log := logs.GetLoggerFromString(config.LogLevel)
	log.Info("Starting chat relay", "tcp", config.TCPAddr(), "http", config.HTTPAddr, "history", config.HistorySize)

	hub := server.NewHub(*config, log, nil)
	go hub.Run()

	listener, err := server.Listen(config.TCPAddr(), hub, log)
	if err != nil {
		_ = hub.Shutdown(config.ShutdownTimeout)
		return err
	}

	var httpServer *http.Server
	if config.HTTPAddr != "" {
		httpServer = server.CreateServer(config.HTTPAddr, server.SetupRoutes(server.NewFrontend(hub, log)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Serve(gctx)
	})
	if httpServer != nil {
		g.Go(func() error {
			return server.StartServer(httpServer, log)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		_ = listener.Close()
		var shutdownErr error
		if httpServer != nil {
			shutdownErr = server.ShutdownServer(httpServer, config.ShutdownTimeout, log)
		}
		return errors.Join(shutdownErr, hub.Shutdown(config.ShutdownTimeout))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}
