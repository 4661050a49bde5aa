package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradebridge/internal/api"
	"tradebridge/internal/config"
	"tradebridge/internal/engine"
	"tradebridge/internal/gateway"
	"tradebridge/internal/httpapi"
	"tradebridge/internal/journal"
	"tradebridge/internal/symbol"
	"tradebridge/internal/util"
)

func main() {
	// Load .env if present; real env vars still win.
	_ = godotenv.Load()

	cfgPath := "config/tradebridge.yaml"
	if p := os.Getenv("TRADEBRIDGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Broker gateway.
	var gw gateway.Gateway
	switch cfg.Broker.Provider {
	case "alpaca":
		gw = gateway.NewAlpacaGateway(
			cfg.Broker.Alpaca.APIKey,
			cfg.Broker.Alpaca.APISecret,
			cfg.Broker.Alpaca.BaseURL,
			cfg.Broker.ConnectTimeout(),
			logger,
		)
	default:
		gw = gateway.NewSimulatorGateway()
	}
	logger.Info("broker gateway configured", "provider", gw.Name())

	resolver := symbol.NewResolver(symbol.Config{
		FuturesPrefixes: cfg.Symbols.FuturesPrefixes,
		EquityExchange:  cfg.Symbols.EquityExchange,
		EquityCurrency:  cfg.Symbols.EquityCurrency,
		FuturesExchange: cfg.Symbols.FuturesExchange,
		FuturesCurrency: cfg.Symbols.FuturesCurrency,
	})

	eng := engine.New(gw, resolver, engine.Options{
		UnknownOrderType:   engine.UnknownTypePolicy(cfg.Trading.OnUnknownOrderType),
		StatusPollTimeout:  cfg.Trading.StatusPollTimeout(),
		StatusPollInterval: cfg.Trading.StatusPollInterval(),
	}, logger)

	// Journal: SQLite for queries, Parquet for cold archive.
	var (
		recorders journal.Multi
		reader    journal.Reader
	)
	if cfg.Journal.SQLitePath != "" {
		sj, err := journal.NewSQLiteJournal(cfg.Journal.SQLitePath)
		if err != nil {
			log.Fatalf("opening journal database: %v", err)
		}
		defer sj.Close()
		recorders = append(recorders, sj)
		reader = sj
	}
	if cfg.Journal.DataDir != "" {
		recorders = append(recorders, journal.NewParquetArchive(cfg.Journal.DataDir))
	}
	var recorder journal.Recorder = journal.Nop{}
	if len(recorders) > 0 {
		recorder = recorders
	}

	srv := httpapi.NewServer(eng, gw.Name(), recorder, reader, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("webhook server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// gRPC health service.
	var grpcServer *api.HealthServer
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			log.Fatalf("listening for grpc: %v", err)
		}
		grpcServer = api.NewHealthServer(logger)
		grpcServer.SetReady()
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("grpc server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
