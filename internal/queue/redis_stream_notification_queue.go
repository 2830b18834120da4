package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"venue-booking/internal/model"
	"venue-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "notifications:booking"
	ConsumerGroupName  = "notification-workers"
	ConsumerNamePrefix = "notifier"

	payloadField = "booking"

	// 部分 sink 失敗時記錄待重送的 sink 名稱，key 為 stream message id
	pendingSinksKeyPrefix = "notifications:pending_sinks:"
	pendingSinksTTL       = 24 * time.Hour
)

// RedisStreamQueueConfig 可注入的逾時與重試設定；nil 或零值時使用預設。
type RedisStreamQueueConfig struct {
	ClaimMinIdleTime   time.Duration // PEL 中超過此時間才被 XAUTOCLAIM 領取
	MaxRetryCount      int           // 超過此次數視為毒藥消息並丟棄
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
	MaxLen             int64         // stream 長度上限（近似修剪），0 表示不修剪
}

func defaultRedisStreamConfig() RedisStreamQueueConfig {
	return RedisStreamQueueConfig{
		ClaimMinIdleTime:   30 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
		MaxLen:             10000,
	}
}

type RedisStreamNotificationQueueImpl struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamQueueConfig
}

// NewRedisStreamNotificationQueue 建立 Redis Stream 版 NotificationQueue。config 可為 nil。
func NewRedisStreamNotificationQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamQueueConfig) (NotificationQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.ClaimMinIdleTime > 0 {
			cfg.ClaimMinIdleTime = config.ClaimMinIdleTime
		}
		if config.MaxRetryCount > 0 {
			cfg.MaxRetryCount = config.MaxRetryCount
		}
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
		if config.MaxLen > 0 {
			cfg.MaxLen = config.MaxLen
		}
	}
	q := &RedisStreamNotificationQueueImpl{
		client:       client,
		streamKey:    StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
	}
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamNotificationQueueImpl) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (q *RedisStreamNotificationQueueImpl) Publish(ctx context.Context, details *model.BookingDetails) error {
	body, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal booking details: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: q.streamKey,
		ID:     "*",
		Values: map[string]interface{}{payloadField: string(body)},
	}
	if q.cfg.MaxLen > 0 {
		args.MaxLen = q.cfg.MaxLen
		args.Approx = true
	}
	if err := q.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamNotificationQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		go q.runAutoClaim(ctx, out)
		q.runReadLoop(ctx, out)
	}()
	return out, nil
}

func (q *RedisStreamNotificationQueueImpl) runReadLoop(ctx context.Context, out chan<- Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			q.readAndDeliver(ctx, out)
		}
	}
}

// readAndDeliver 只讀 ">"（新訊息）；已投遞未 ack 的訊息由 XAUTOCLAIM 超時後領回重試。
func (q *RedisStreamNotificationQueueImpl) readAndDeliver(ctx context.Context, out chan<- Delivery) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, ">"},
		Count:    10,
		Block:    q.cfg.ReadGroupBlockTime,
	}).Result()

	if err == redis.Nil {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithComponent("mq").Error("XReadGroup failed", zap.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		if stream.Stream != q.streamKey {
			continue
		}
		for _, msg := range stream.Messages {
			d := q.newDelivery(ctx, msg)
			if d == nil {
				continue
			}
			select {
			case out <- *d:
			case <-ctx.Done():
				return
			}
		}
	}
}

// shouldProcessMessage 毒藥消息判斷：重試次數達上限就 ack 丟棄
func (q *RedisStreamNotificationQueueImpl) shouldProcessMessage(ctx context.Context, messageID string) bool {
	n, err := q.getMessageRetryCount(ctx, messageID)
	if err != nil {
		logger.WithComponent("mq").Warn("getMessageRetryCount failed", zap.String("message_id", messageID), zap.Error(err))
		return true
	}
	if n >= q.cfg.MaxRetryCount {
		logger.WithComponent("mq").Warn("discard poison message", zap.String("message_id", messageID), zap.Int("retries", n), zap.Int("max_retries", q.cfg.MaxRetryCount))
		_ = q.client.XAck(ctx, q.streamKey, q.groupName, messageID).Err()
		_ = q.client.Del(ctx, pendingSinksKeyPrefix+messageID).Err()
		return false
	}
	return true
}

func (q *RedisStreamNotificationQueueImpl) getMessageRetryCount(ctx context.Context, messageID string) (int, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.streamKey,
		Group:  q.groupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return int(pending[0].RetryCount), nil
}

// runAutoClaim 定時用 XAUTOCLAIM 領取超時未處理的消息
func (q *RedisStreamNotificationQueueImpl) runAutoClaim(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	startID := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			claimed, nextID, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
				Stream:   q.streamKey,
				Group:    q.groupName,
				Consumer: q.consumerName,
				MinIdle:  q.cfg.ClaimMinIdleTime,
				Count:    10,
				Start:    startID,
			}).Result()

			if err != nil && err != redis.Nil {
				logger.WithComponent("mq").Error("XAutoClaim failed", zap.Error(err))
				continue
			}
			if nextID != "" && nextID != "0-0" {
				startID = nextID
			} else {
				startID = "0-0"
			}

			for _, msg := range claimed {
				if !q.shouldProcessMessage(ctx, msg.ID) {
					continue
				}
				d := q.newDelivery(ctx, msg)
				if d == nil {
					continue
				}
				select {
				case out <- *d:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// newDelivery 從 Redis 消息組裝 Delivery；無法解析的訊息直接 ack 掉
func (q *RedisStreamNotificationQueueImpl) newDelivery(ctx context.Context, msg redis.XMessage) *Delivery {
	log := logger.WithComponent("mq")
	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		log.Warn("invalid message: missing payload field", zap.String("message_id", msg.ID))
		_ = q.client.XAck(ctx, q.streamKey, q.groupName, msg.ID).Err()
		return nil
	}
	var details model.BookingDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		log.Warn("unmarshal booking details failed", zap.String("message_id", msg.ID), zap.Error(err))
		_ = q.client.XAck(ctx, q.streamKey, q.groupName, msg.ID).Err()
		return nil
	}
	msgID := msg.ID
	return &Delivery{
		Data:  &details,
		Sinks: q.pendingSinks(ctx, msgID),
		Ack: func() {
			if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
				log.Error("XAck failed", zap.String("message_id", msgID), zap.Error(err))
			}
			_ = q.client.Del(ctx, pendingSinksKeyPrefix+msgID).Err()
		},
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，等 ClaimMinIdleTime 後由 XAUTOCLAIM 領取
				log.Info("message nack(requeue), will retry", zap.String("message_id", msgID), zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime))
				return
			}
			if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
				log.Error("XAck discard failed", zap.String("message_id", msgID), zap.Error(err))
			}
			_ = q.client.Del(ctx, pendingSinksKeyPrefix+msgID).Err()
		},
		Retry: func(failedSinks []string) {
			// 已成功的 sink 不再重送；訊息留在 PEL 由 XAUTOCLAIM 領回
			if err := q.client.Set(ctx, pendingSinksKeyPrefix+msgID, strings.Join(failedSinks, ","), pendingSinksTTL).Err(); err != nil {
				log.Error("record pending sinks failed", zap.String("message_id", msgID), zap.Error(err))
			}
		},
	}
}

// pendingSinks 讀取上次失敗的 sink；沒有紀錄代表全部都要送
func (q *RedisStreamNotificationQueueImpl) pendingSinks(ctx context.Context, msgID string) []string {
	raw, err := q.client.Get(ctx, pendingSinksKeyPrefix+msgID).Result()
	if err != nil || raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
