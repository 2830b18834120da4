package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"venue-booking/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AvailabilitySnapshot is a cached table list plus the version it was read at.
// Tables is nil on a miss.
type AvailabilitySnapshot struct {
	Version int64
	Tables  []*model.TableAvailability
}

func (s *AvailabilitySnapshot) Hit() bool {
	return s != nil && s.Tables != nil
}

type AvailabilityCache interface {
	// 讀取：回傳快取內容與當下版本號
	Load(ctx context.Context, eventID uuid.UUID) (*AvailabilitySnapshot, error)
	// 寫入：只有版本號未變時才寫入 (Lua 腳本確保原子性)，避免覆蓋較新的失效
	Store(ctx context.Context, eventID uuid.UUID, version int64, tables []*model.TableAvailability) (bool, error)
	// 失效：版本號 +1 並刪除快取
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}

type RedisAvailabilityCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAvailabilityCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

// versionTTL keeps version keys around long enough to outlive any data key.
const versionTTL = 7 * 24 * time.Hour

var loadScript = redis.NewScript(`
	local version = redis.call('GET', KEYS[2]) or '0'
	local data = redis.call('GET', KEYS[1]) or ''
	return {version, data}
`)

var storeScript = redis.NewScript(`
	local version = redis.call('GET', KEYS[2]) or '0'
	if version ~= ARGV[1] then
		return 0 -- 期間內已被失效，放棄寫入
	end
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
`)

var invalidateScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('EXPIRE', KEYS[2], ARGV[1])
	redis.call('DEL', KEYS[1])
	return 1
`)

func (c *RedisAvailabilityCacheImpl) dataKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:availability", eventID)
}

func (c *RedisAvailabilityCacheImpl) versionKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:availability:ver", eventID)
}

func (c *RedisAvailabilityCacheImpl) Load(ctx context.Context, eventID uuid.UUID) (*AvailabilitySnapshot, error) {
	keys := []string{c.dataKey(eventID), c.versionKey(eventID)}
	result, err := loadScript.Run(ctx, c.client, keys).Slice()
	if err != nil {
		return nil, err
	}
	if len(result) != 2 {
		return nil, errors.New("unexpected result")
	}

	versionStr, _ := result[0].(string)
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %v", err)
	}

	snapshot := &AvailabilitySnapshot{Version: version}
	data, _ := result[1].(string)
	if data == "" {
		return snapshot, nil
	}

	var tables []*model.TableAvailability
	if err := json.Unmarshal([]byte(data), &tables); err != nil {
		return nil, fmt.Errorf("invalid availability payload: %v", err)
	}
	if tables == nil {
		tables = []*model.TableAvailability{}
	}
	snapshot.Tables = tables
	return snapshot, nil
}

func (c *RedisAvailabilityCacheImpl) Store(ctx context.Context, eventID uuid.UUID, version int64, tables []*model.TableAvailability) (bool, error) {
	body, err := json.Marshal(tables)
	if err != nil {
		return false, err
	}
	keys := []string{c.dataKey(eventID), c.versionKey(eventID)}
	ttl := jitter(c.ttl)

	stored, err := storeScript.Run(ctx, c.client, keys,
		strconv.FormatInt(version, 10), string(body), ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *RedisAvailabilityCacheImpl) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	keys := []string{c.dataKey(eventID), c.versionKey(eventID)}
	return invalidateScript.Run(ctx, c.client, keys, int64(versionTTL.Seconds())).Err()
}

// jitter 隨機延長 0~30% 的過期時間，避免同時失效
func jitter(base time.Duration) time.Duration {
	return time.Duration(float64(base) * (1 + rand.Float64()*0.3))
}
