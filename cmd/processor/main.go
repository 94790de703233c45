package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/ds124wfegd/WB_L3/composite/internal/database"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/processor"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := database.NewCompositeRepository(storage.NewFileStorage(cfg.App.StoragePath))

	if err := processor.StartCompositeConsumer(ctx, cfg.Kafka, processor.NewCompositeProcessor(repo)); err != nil {
		logrus.Fatalf("Composite consumer stopped. Error: {%s}", err.Error())
	}
	logrus.Print("Composite processor stopped")
}
