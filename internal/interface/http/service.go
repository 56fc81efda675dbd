package httpservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ark-network/raffle/internal/config"
	"github.com/ark-network/raffle/internal/core/application"
	interfaces "github.com/ark-network/raffle/internal/interface"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type service struct {
	config       Config
	appConfig    *config.Config
	server       *http.Server
	broker       *broker
	keeper       *application.Keeper
	otelShutdown func(context.Context) error
}

func NewService(
	svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{
		config:    svcConfig,
		appConfig: appConfig,
		broker:    newBroker(appConfig.EventSubscriber()),
	}, nil
}

func (s *service) Start() error {
	if s.appConfig.OtelCollectorEndpoint != "" {
		otelShutdown, err := initOtelSDK(
			context.Background(), s.appConfig.OtelCollectorEndpoint,
		)
		if err != nil {
			return err
		}
		s.otelShutdown = otelShutdown
	}

	appSvc, err := s.appConfig.AppService()
	if err != nil {
		return err
	}
	if err := appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start app service: %s", err)
	}
	log.Info("started app service")

	keeper, err := s.appConfig.KeeperService()
	if err != nil {
		return err
	}
	if keeper != nil {
		if err := keeper.Start(); err != nil {
			return fmt.Errorf("failed to start keeper: %s", err)
		}
		s.keeper = keeper
		log.Info("started keeper")
	}

	if err := s.broker.start(); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           newRouter(appSvc, s.broker, s.appConfig.MetricsRegistry()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()
	log.Infof("started listening at %s", s.config.address())

	return nil
}

func (s *service) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to shutdown http server")
		}
		log.Info("stopped http server")
	}

	s.broker.stop()

	if s.keeper != nil {
		s.keeper.Stop()
		log.Info("stopped keeper")
	}

	appSvc, _ := s.appConfig.AppService()
	if appSvc != nil {
		appSvc.Stop()
		log.Info("stopped app service")
	}

	if s.otelShutdown != nil {
		if err := s.otelShutdown(context.Background()); err != nil {
			log.Errorf("failed to shutdown otel: %s", err)
		}
	}
}

func newRouter(
	svc application.Service, broker *broker, registry *prometheus.Registry,
) *gin.Engine {
	h := &handler{svc, broker}

	router := gin.New()
	router.Use(gin.Recovery(), tracing())

	router.GET("/healthz", healthz)
	if registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		))
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/raffle", h.getRaffle)
		v1.POST("/raffle/enter", h.enterRaffle)
		v1.GET("/raffle/entrance-fee", h.getEntranceFee)
		v1.GET("/raffle/players/:index", h.getPlayer)
		v1.GET("/raffle/upkeep", h.checkUpkeep)
		v1.POST("/raffle/upkeep", h.performUpkeep)
		v1.POST("/raffle/fulfill", h.fulfillRandomWords)
		v1.GET("/raffle/draws", h.getDraws)
		v1.GET("/balances/:account", h.getBalance)
		v1.GET("/events", h.streamEvents)
	}

	return router
}
