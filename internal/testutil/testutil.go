package testutil

import (
	"context"
	"fmt"
	"log"
	"time"

	"venue-booking/config"
	"venue-booking/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Setup 連線測試用 Postgres 與 Redis，並套用 schema
func Setup() (*pgxpool.Pool, *redis.Client, func(), error) {
	cfg := config.LoadTestConfig()

	testDB, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, testDB); err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to migrate test database: %v", err)
	}

	log.Println("Test database connected successfully")

	testRdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}
	log.Println("Test redis connected successfully")

	cleanup := func() {
		testDB.Close()
		log.Println("Test database closed")

		testRdb.Close()
		log.Println("Test redis closed")
	}

	return testDB, testRdb, cleanup, nil
}

// SetupRedisOnly 僅初始化 Redis，用於只依賴 Redis 的測試（如 queue、cache）
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %v", err)
	}
	cleanup := func() { rdb.Close() }
	return rdb, cleanup, nil
}
