package http

import (
	"context"

	http_router "github.com/lintang-b-s/Partitionx/pkg/http/router"
	"github.com/lintang-b-s/Partitionx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Partitionx/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use serves the partition api until ctx is canceled or the listener fails.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	partitionService controllers.PartitionService,
) error {
	viper.SetDefault("API_PORT", 6060)

	viper.SetDefault("API_TIMEOUT", "1000s")

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(
			gctx, config, log,
			useRateLimit, partitionService,
		)
	})

	return g.Wait()
}
