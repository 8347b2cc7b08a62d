package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg/database"

	"github.com/streadway/amqp"
)

// NotificationPublisher definition notification job producer
type NotificationPublisher interface {
	Publish(ctx context.Context, job domain.NotificationJob) error
}

type rabbitNotificationPublisher struct {
	rabbit    database.RabbitRepo
	queueName string
}

// NewRabbitNotificationPublisher publishes jobs to queueName through the default exchange
func NewRabbitNotificationPublisher(rabbit database.RabbitRepo, queueName string) NotificationPublisher {
	if queueName == "" {
		queueName = domain.NotificationQueue
	}
	return &rabbitNotificationPublisher{rabbit: rabbit, queueName: queueName}
}

func (p *rabbitNotificationPublisher) Publish(ctx context.Context, job domain.NotificationJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal notification job: %w", err)
	}
	return p.rabbit.Publish(
		"",          // 預設 exchange
		p.queueName, // queue 名稱
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    job.CreatedAt,
			Body:         data,
		},
	)
}
