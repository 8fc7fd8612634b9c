package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/Partitionx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Partitionx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Partitionx/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/viper"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

type API struct {
	log     *zap.Logger
	ctx     context.Context
	hub     *controllers.Hub
	poller  netpoll.Poller
	workers *pool.Pool
	closed  atomic.Bool
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			Partitionx API
//	@version		1.0
//	@description	Hypergraph bisection service (Fiduccia-Mattheyses and genetic partitioner).

//	@contact.name	Lintang Birda Saputra
//	@contact.url	_
//	@contact.email	lintang.birda.saputra@mail.ugm.ac.id

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Handler(ctx context.Context, useRateLimit bool, partitionService controllers.PartitionService) (http.Handler, error) {
	viper.SetDefault("WEBSOCKET_WORKERS", 16)

	poller, err := netpoll.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create websocket poller: %w", err)
	}
	api.ctx = ctx
	api.poller = poller
	api.workers = pool.New().WithMaxGoroutines(viper.GetInt("WEBSOCKET_WORKERS"))
	api.hub = controllers.NewHub(partitionService, api.log)

	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore

	})

	router.GET("/doc/*any", swaggerHandler)

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	router.GET("/ws", api.serveWebsocket)

	group := router_helper.NewRouteGroup(router, "/api")

	partitionRoutes := controllers.New(partitionService, api.log)

	partitionRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	return alice.New(mwChain...).Then(router), nil
}

// Close drops every websocket connection and waits for running streams.
func (api *API) Close() {
	if api.closed.Swap(true) || api.hub == nil {
		return
	}
	api.hub.RemoveAllUser()
	api.workers.Wait()
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,

	useRateLimit bool,
	partitionService controllers.PartitionService,
) error {
	log.Info("Run httprouter API")

	handler, err := api.Handler(ctx, useRateLimit, partitionService)
	if err != nil {
		return err
	}

	srv := http_server.New(ctx, handler, config)
	log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		log.Info("HTTP server stopped", zap.Error(err))
		api.Close()
		return err

	case <-ctx.Done():
		log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		api.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
