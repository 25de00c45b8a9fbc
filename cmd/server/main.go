package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pranay13257/minibacarat/internal/config"
	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"github.com/Pranay13257/minibacarat/internal/repository"
	"github.com/Pranay13257/minibacarat/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

// roundStore is what the server needs from a store: the table's
// persistence boundary plus history for the gRPC service.
type roundStore interface {
	game.RoundStore
	server.RoundHistory
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting baccarat table server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("table", cfg.Table.Number),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Round store
	var store roundStore
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory round store; results are lost on restart")
		store = repository.NewMemoryStore()
	default:
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		rounds := repository.NewRoundRepository(db)
		if err := rounds.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		store = rounds
	}

	// Shoe
	var shuffler shoe.Shuffler
	if cfg.Table.Seed != 0 {
		logger.Warn("shuffle seed configured; shoe order is reproducible", zap.Uint64("seed", cfg.Table.Seed))
		shuffler, err = shoe.NewSeededShuffler(shoe.SeedFromInt(cfg.Table.Seed))
	} else {
		shuffler, err = shoe.NewCryptoShuffler()
	}
	if err != nil {
		logger.Fatal("failed to initialize shuffler", zap.Error(err))
	}

	tableCfg, err := cfg.Table.GameConfig()
	if err != nil {
		logger.Fatal("invalid table configuration", zap.Error(err))
	}

	// Publishers: the hub always, the journal when enabled
	hub := server.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	publishers := game.Publishers{hub}
	var journal *game.JournalRecorder
	if cfg.Journal.Enabled {
		journal = game.NewJournalRecorder(logger, cfg.Journal.Directory)
		publishers = append(publishers, journal)
		logger.Info("round journal enabled", zap.String("directory", cfg.Journal.Directory))
	}

	table := game.NewTable(tableCfg, shoe.New(shuffler), store, publishers, logger)
	if err := table.Load(ctx); err != nil {
		logger.Fatal("failed to load round history", zap.Error(err))
	}
	logger.Info("table initialized",
		zap.Int("round", table.Snapshot().Round),
		zap.Stringer("mode", tableCfg.Mode),
	)

	dealer := game.NewAutoDealer(table, logger)
	dispatcher := server.NewDispatcher(ctx, table, dealer, logger)

	wsServer := server.NewWebSocketServer(ctx, cfg.Server.WebSocket, hub, table, dispatcher, logger)
	go func() {
		if wsErr := wsServer.ListenAndServe(); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
			stop()
		}
	}()

	var grpcServer *grpc.Server
	if cfg.Server.GRPC.Enabled {
		svc := server.NewTableService(table, store, logger)
		var hs *health.Server
		grpcServer, hs = server.NewGRPCServer(cfg.Server.GRPC, svc, logger)
		defer hs.Shutdown()

		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.Error(err))
		}
		go func() {
			logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
			if serveErr := grpcServer.Serve(lis); serveErr != nil {
				logger.Error("gRPC server error", zap.Error(serveErr))
			}
		}()
	}

	logger.Info("baccarat table server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Bool("grpc_enabled", cfg.Server.GRPC.Enabled),
		zap.String("store", cfg.Database.Driver),
	)

	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	// an interrupted auto-deal fails the round and publishes a last state
	dispatcher.Wait()
	<-hubDone
	if journal != nil {
		journal.Flush()
	}

	logger.Info("baccarat table server stopped")
}

// initLogger builds the zap logger from configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
