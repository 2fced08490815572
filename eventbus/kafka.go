package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"feedback-ai/config"
	"feedback-ai/logger"
)

// KafkaPublisher는 confluent-kafka-go 라이브러리를 사용한 Publisher 구현체입니다.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher는 Kafka Producer를 초기화합니다.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("kafka bootstrap servers are not configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka Producer 생성 실패: %w", err)
	}

	// Producer 이벤트(전달 보고서 등) 처리
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.ErrorWithFields("kafka delivery failed", logger.Fields{
						"topic": cfg.Topic,
						"error": ev.TopicPartition.Error.Error(),
					})
				}
			case kafka.Error:
				logger.ErrorWithFields("kafka error", logger.Fields{"error": ev.Error()})
			}
		}
	}()

	return &KafkaPublisher{producer: p, topic: cfg.Topic}, nil
}

// Close는 Producer를 안전하게 종료합니다.
func (k *KafkaPublisher) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	k.closed = true

	// 5초 동안 남은 메시지를 모두 플러시합니다.
	if remaining := k.producer.Flush(5000); remaining > 0 {
		logger.WarnWithFields("kafka flush incomplete", logger.Fields{"remaining": remaining})
	}
	k.producer.Close()
	logger.Log.Info("Kafka Producer 종료.")
}

// Publish는 이벤트를 발행하고 전달 보고서를 기다립니다. 메시지 키는 event.ID 입니다.
func (k *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	// 버퍼가 있으므로 ctx 로 먼저 빠져나가도 전달 보고서 전송이 막히지 않는다.
	deliveryChan := make(chan kafka.Event, 1)

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
		Headers:        []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
