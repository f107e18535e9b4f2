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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/finebot/penalty-ledger/internal/config"
	"github.com/finebot/penalty-ledger/internal/events/kafka"
	"github.com/finebot/penalty-ledger/internal/events/logging"
	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
	"github.com/finebot/penalty-ledger/internal/ledger"
	"github.com/finebot/penalty-ledger/internal/line"
	"github.com/finebot/penalty-ledger/internal/server"
	"github.com/finebot/penalty-ledger/internal/storage/memory"
	"github.com/finebot/penalty-ledger/internal/storage/postgres"
	"github.com/finebot/penalty-ledger/internal/storage/sqlite"
)

var (
	envFile     string
	httpAddr    string
	storeDriver string
)

var rootCmd = &cobra.Command{
	Use:           "finebot",
	Short:         "LINE bot keeping the group's fine ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file merged into the environment")
	rootCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.Flags().StringVar(&storeDriver, "store", "", "memory, postgres or sqlite (overrides STORE_DRIVER)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer closeStore()

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, kafka.WithWriteTimeout(cfg.PublishTimeout))
		defer kp.Close()
		publisher = kp
	} else {
		publisher = logging.NewPublisher(logger.Named("events"))
	}

	ledgerService := ledger.NewLedger(store,
		ledger.WithRoster(cfg.Roster),
		ledger.WithGroupSize(cfg.GroupSize),
		ledger.WithCorrectionTTL(cfg.CorrectionTTL),
		ledger.WithPublisher(publisher, cfg.KafkaTopic),
		ledger.WithPublishTimeout(cfg.PublishTimeout),
		ledger.WithLogger(logger.Named("ledger")),
	)

	if cfg.LineChannelAccessToken == "" {
		logger.Warn("LINE_CHANNEL_ACCESS_TOKEN is empty, replies will be rejected")
	}
	replier, err := line.NewClient(cfg.LineChannelAccessToken, cfg.LineAPIEndpoint)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewServer(ledgerService, replier, logger.Named("http")).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openStore(ctx context.Context, cfg *config.Config) (interfaces.LedgerStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return memory.NewMemoryLedgerStore(), func() {}, nil
	}
}
