package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const defaultRetryDelay = 10 * time.Second

// Consumer 將通知工作從 RabbitMQ 寫入 MongoDB
type Consumer struct {
	rabbitChannel *amqp.Channel
	notifications *NotificationUseCase
	queueName     string
	retryDelay    time.Duration
}

// NewConsumer 建構 Consumer 實例
func NewConsumer(rabbitChannel *amqp.Channel, notifications *NotificationUseCase, queueName string) *Consumer {
	if queueName == "" {
		queueName = domain.NotificationQueue
	}
	return &Consumer{
		rabbitChannel: rabbitChannel,
		notifications: notifications,
		queueName:     queueName,
		retryDelay:    defaultRetryDelay,
	}
}

// StartConsumer 開始消費通知工作，直到 ctx 結束或 channel 關閉
func (c *Consumer) StartConsumer(ctx context.Context) error {
	msgs, err := c.rabbitChannel.Consume(
		c.queueName, // queue
		"",          // consumer tag，留空由系統分配
		false,       // autoAck 為 false，使用手動確認
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queueName, err)
	}

	logger.Log.Info("notification consumer started", zap.String("queue", c.queueName))
	c.consume(ctx, msgs)
	return nil
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Warn("notification queue channel closed", zap.String("queue", c.queueName))
				return
			}
			c.handle(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("notification consumer stopped", zap.String("queue", c.queueName))
			return
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var job domain.NotificationJob
	if err := json.Unmarshal(d.Body, &job); err != nil || job.UserID == "" {
		// 格式錯誤的訊息重送也不會成功，直接丟棄
		logger.Log.Error("drop malformed notification job", zap.ByteString("body", d.Body), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			logger.Log.Error("nack failed", zap.Error(err))
		}
		return
	}

	if _, err := c.notifications.Store(ctx, job); err != nil {
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
		}
		if err := d.Nack(false, true); err != nil {
			logger.Log.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Log.Error("ack failed", zap.String("request", job.RequestID), zap.Error(err))
	}
}
