package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// TaskHandler processes one composite task.
type TaskHandler func(ctx context.Context, task entity.CompositeTask) error

type Producer interface {
	SendTask(ctx context.Context, task entity.CompositeTask) error
	Close() error
}

type kafkaProducer struct {
	writer  *kafka.Writer
	topic   string
	timeout time.Duration
}

// NewProducer connects to Kafka and makes sure the task topic exists. When
// Kafka is disabled or unreachable, tasks are handed to fallback in-process.
func NewProducer(cfg config.KafkaConfig, fallback TaskHandler) Producer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logrus.Info("Kafka disabled, composite tasks run in-process")
		return &inlineProducer{handle: fallback}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.WithField("brokers", cfg.Brokers).Info("Kafka producer configured")

	// Проверяем подключение и создаем топик
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		logrus.WithError(err).Warn("Kafka connection failed, composite tasks run in-process")
		return &inlineProducer{handle: fallback}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.WithError(err).Warn("Could not create topic (might already exist)")
	} else {
		logrus.WithField("topic", cfg.Topic).Info("Created topic")
	}

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &kafkaProducer{writer: writer, topic: cfg.Topic, timeout: timeout}
}

func (p *kafkaProducer) SendTask(ctx context.Context, task entity.CompositeTask) error {
	messageBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(task.CompositeID),
		Value: messageBytes,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logrus.WithError(err).WithField("composite_id", task.CompositeID).Error("Failed to write message to Kafka")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"topic":        p.topic,
		"composite_id": task.CompositeID,
	}).Info("Task sent to Kafka")
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// inlineProducer runs tasks in a goroutine of the current process, for setups without Kafka.
type inlineProducer struct {
	handle TaskHandler
}

func (p *inlineProducer) SendTask(ctx context.Context, task entity.CompositeTask) error {
	if p.handle == nil {
		logrus.WithField("composite_id", task.CompositeID).Warn("No task handler, task dropped")
		return nil
	}

	go func() {
		if err := p.handle(context.Background(), task); err != nil {
			logrus.WithError(err).WithField("composite_id", task.CompositeID).Error("In-process task failed")
		}
	}()
	return nil
}

func (p *inlineProducer) Close() error {
	return nil
}
