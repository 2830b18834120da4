package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"venue-booking/internal/model"
	"venue-booking/pkg/logger"

	"go.uber.org/zap"
)

// Sink delivers a confirmed booking somewhere: inbox, broker, ...
type Sink interface {
	Name() string
	Send(ctx context.Context, details *model.BookingDetails) error
}

type Dispatcher interface {
	// Dispatch 送到 sinks 指定的 sink（空表示全部），回傳失敗的 sink 名稱讓 worker 只重送這些
	Dispatch(ctx context.Context, details *model.BookingDetails, sinks []string) ([]string, error)
}

type DispatcherImpl struct {
	sinks []Sink
}

func NewDispatcher(sinks ...Sink) Dispatcher {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &DispatcherImpl{sinks: active}
}

func (d *DispatcherImpl) Dispatch(ctx context.Context, details *model.BookingDetails, only []string) ([]string, error) {
	if details == nil {
		return nil, nil
	}
	var (
		failed []string
		errs   []error
	)
	for _, sink := range d.sinks {
		if len(only) > 0 && !slices.Contains(only, sink.Name()) {
			continue
		}
		if err := sink.Send(ctx, details); err != nil {
			logger.WithComponent("notify").Warn("sink failed",
				zap.String("sink", sink.Name()),
				zap.String("booking_ref", details.BookingRef),
				zap.Error(err))
			failed = append(failed, sink.Name())
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return failed, errors.Join(errs...)
}
