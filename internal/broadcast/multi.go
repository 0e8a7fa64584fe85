package broadcast

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"football-agent/internal/config"
)

// Multi publishes to every sink in order. A failing sink is logged and
// does not stop the others.
type Multi struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewMulti(logger *zap.Logger, sinks ...Sink) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{sinks: sinks, logger: logger.Named("broadcast")}
}

// Add appends a sink; it is not safe to call concurrently with Publish.
func (m *Multi) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

func (m *Multi) Len() int {
	return len(m.sinks)
}

// Publish returns the joined errors of the sinks that failed.
func (m *Multi) Publish(ctx context.Context, key string, payload []byte) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, key, payload); err != nil {
			m.logger.Warn("sink publish failed", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig enables the redis sink when an address is set and the kafka
// sink when brokers are listed. With neither, the result has no sinks.
func FromConfig(cfg *config.Config, logger *zap.Logger) *Multi {
	m := NewMulti(logger)
	if cfg.Redis.Addr != "" {
		m.Add(NewRedisSink(NewRedisClient(cfg.Redis), cfg.Redis.Channel))
		m.logger.Info("redis sink enabled",
			zap.String("addr", cfg.Redis.Addr), zap.String("channel", cfg.Redis.Channel))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		m.Add(NewKafkaSink(NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), cfg.Kafka.Topic))
		m.logger.Info("kafka sink enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	return m
}
