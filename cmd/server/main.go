package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/Partitionx/pkg/http"
	"github.com/lintang-b-s/Partitionx/pkg/http/usecases"
	"github.com/lintang-b-s/Partitionx/pkg/logger"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	useRateLimit = flag.Bool("rate_limit", false, "enable the token bucket rate limiter")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	viper.SetDefault("RESULT_DB_PATH", "./data/results")
	store, err := storage.OpenResultStore(viper.GetString("RESULT_DB_PATH"), logger)
	if err != nil {
		panic(err)
	}
	defer store.Close()
	if n, err := store.Count(); err == nil {
		logger.Info("stored partitions", zap.Int("count", n))
	}

	cfg := util.LoadPartitionConfig()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	partitionService := usecases.NewPartitionService(logger, store, cfg, util.LoadServiceLimits())

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	api := http.NewServer(logger)
	if err := api.Use(ctx, logger, *useRateLimit, partitionService); err != nil {
		logger.Error("Partitionx server error", zap.Error(err))
	}

	logger.Info("Partitionx Server Stopped")
}

// NewContext is canceled on SIGINT or SIGTERM.
func NewContext() (context.Context, func(), error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
