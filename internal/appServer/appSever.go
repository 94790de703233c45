// launching the server, storage, kafka, redis
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/ds124wfegd/WB_L3/composite/internal/database"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/cache"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/processor"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/storage"
	"github.com/ds124wfegd/WB_L3/composite/internal/service"
	"github.com/ds124wfegd/WB_L3/composite/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	compositeCache := cache.New(ctx, cfg.Redis)
	cancel()

	fileStorage := storage.NewFileStorage(cfg.App.StoragePath)
	compositeRepo := database.NewCompositeRepository(fileStorage)
	compositeProcessor := processor.NewCompositeProcessor(compositeRepo)
	kafkaProducer := kafka.NewProducer(cfg.Kafka, compositeProcessor.Process)
	defer kafkaProducer.Close()

	compositeService := service.NewCompositeService(compositeRepo, kafkaProducer, compositeProcessor, compositeCache, service.Defaults{
		DownscaleFactor: cfg.App.DefaultDownscale,
		Format:          cfg.App.DefaultFormat,
	})
	compositeHandler := transport.NewCompositeHandler(compositeService, cfg.App.MaxUploadMB)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(compositeHandler, cfg.App.TemplatesPath)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

}
