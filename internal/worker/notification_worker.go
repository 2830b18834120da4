package worker

import (
	"context"

	"venue-booking/internal/notify"
	"venue-booking/internal/queue"
	"venue-booking/pkg/logger"

	"go.uber.org/zap"
)

type NotificationWorker interface {
	// 訂閱通知隊列
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	dispatcher notify.Dispatcher
	queue      queue.NotificationQueue
}

func NewNotificationWorker(dispatcher notify.Dispatcher, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		dispatcher: dispatcher,
		queue:      queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			failed, err := w.dispatcher.Dispatch(ctx, msg.Data, msg.Sinks)
			if err != nil && len(failed) > 0 {
				// 只重送失敗的 sink，已寄出的信不重寄
				log.Warn("dispatch notification failed, retry failed sinks",
					zap.String("booking_ref", msg.Data.BookingRef),
					zap.Strings("sinks", failed), zap.Error(err))
				msg.Retry(failed)
				continue
			}
			msg.Ack()
		}
		log.Info("notification worker stopped")
	}()
	return nil
}
