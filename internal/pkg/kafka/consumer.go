package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Consume reads composite tasks until ctx is cancelled and passes each one to
// handle. At most cfg.Workers tasks run at the same time.
func Consume(ctx context.Context, cfg config.KafkaConfig, handle TaskHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	logrus.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
		"workers": workers,
	}).Info("Composite consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				logrus.Info("Composite consumer stopped")
				return nil
			}
			logrus.WithError(err).Error("Error reading message from Kafka")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Debug("Received message")

		task, err := DecodeTask(msg.Value)
		if err != nil {
			logrus.WithError(err).Error("Failed to parse task")
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		wg.Add(1)
		go func(t entity.CompositeTask) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := handle(ctx, t); err != nil {
				logrus.WithError(err).WithField("composite_id", t.CompositeID).Error("Processing failed")
			}
		}(task)
	}
}

func DecodeTask(data []byte) (entity.CompositeTask, error) {
	var task entity.CompositeTask
	if err := json.Unmarshal(data, &task); err != nil {
		return task, err
	}
	if task.CompositeID == "" {
		return task, errors.New("task has no composite id")
	}
	return task, nil
}
