package queue

import (
	"context"
	"time"

	"venue-booking/internal/model"
	"venue-booking/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.BookingDetails
	// Sinks 非空時只需送往這些 sink（前一次投遞失敗的部分）
	Sinks []string
	Ack   func()
	Nack  func(requeue bool)
	// Retry 稍後重新投遞，只帶上仍失敗的 sink
	Retry func(failedSinks []string)
}

type NotificationQueue interface {
	// 發送訂位確認通知到隊列
	Publish(ctx context.Context, details *model.BookingDetails) error
	// 訂閱通知隊列
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryQueueConfig 重試上限與退避；nil 或零值時使用預設
type MemoryQueueConfig struct {
	MaxAttempts  int           // 含第一次投遞，超過即丟棄
	RetryBackoff time.Duration // 第 n 次重試等待 RetryBackoff * 2^(n-1)
}

func defaultMemoryQueueConfig() MemoryQueueConfig {
	return MemoryQueueConfig{
		MaxAttempts:  5,
		RetryBackoff: time.Second,
	}
}

type envelope struct {
	details *model.BookingDetails
	sinks   []string
	attempt int
}

type NotificationQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch  chan envelope
	cfg MemoryQueueConfig
}

func NewNotificationQueue(bufferSize int, config *MemoryQueueConfig) NotificationQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	cfg := defaultMemoryQueueConfig()
	if config != nil {
		if config.MaxAttempts > 0 {
			cfg.MaxAttempts = config.MaxAttempts
		}
		if config.RetryBackoff > 0 {
			cfg.RetryBackoff = config.RetryBackoff
		}
	}
	return &NotificationQueueImpl{
		ch:  make(chan envelope, bufferSize),
		cfg: cfg,
	}
}

func (q *NotificationQueueImpl) Publish(ctx context.Context, details *model.BookingDetails) error {
	select {
	case q.ch <- envelope{details: details, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *NotificationQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data:  env.details,
					Sinks: env.sinks,
					Ack:   func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.retry(ctx, env, env.sinks)
						}
					},
					Retry: func(failedSinks []string) {
						q.retry(ctx, env, failedSinks)
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// retry 以指數退避重新排入隊列，達上限或隊列已滿時丟棄以免阻塞 worker
func (q *NotificationQueueImpl) retry(ctx context.Context, env envelope, sinks []string) {
	log := logger.WithComponent("mq").With(zap.String("booking_ref", env.details.BookingRef))
	if env.attempt >= q.cfg.MaxAttempts {
		log.Warn("notification dropped after max attempts",
			zap.Int("attempts", env.attempt), zap.Strings("sinks", sinks))
		return
	}

	next := envelope{details: env.details, sinks: sinks, attempt: env.attempt + 1}
	delay := q.cfg.RetryBackoff << (env.attempt - 1)
	time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		select {
		case q.ch <- next:
		default:
			log.Warn("notification queue full, retry dropped", zap.Strings("sinks", sinks))
		}
	})
}
