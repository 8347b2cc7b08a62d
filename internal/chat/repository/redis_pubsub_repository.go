package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub definition realtime change feed
type PubSub interface {
	Publish(ctx context.Context, channel string, event domain.ChangeEvent) error
	// Subscribe delivers every event of channel to handler until ctx is cancelled.
	// It returns once the subscription is confirmed.
	Subscribe(ctx context.Context, channel string, handler func(domain.ChangeEvent)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client redis.UniversalClient
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client redis.UniversalClient) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish 將 event 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event domain.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return err
	}
	metrics.RealtimeEvents.WithLabelValues(event.Table).Inc()
	return nil
}

// Subscribe 訂閱 channel，收到 event 後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(domain.ChangeEvent)) error {
	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var event domain.ChangeEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					logger.Log.Error("failed to unmarshal change event", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(event)
			case <-ctx.Done():
				logger.Log.Debug("sub close", zap.String("channel", channel))
				return
			}
		}
	}()
	return nil
}
