// Package cache provides the Redis-backed workflow response cache.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/orchestrator"
)

// =============================================================================
// 💾 工作流结果缓存
// =============================================================================
// 同一段请求文本的协作工作流结果在 TTL 内直接复用，避免重复执行整条
// 代理链。键由归一化请求文本的哈希派生。
// =============================================================================

// Config 缓存配置
type Config struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr"`

	// 密码
	Password string `yaml:"password" json:"password"`

	// 数据库编号
	DB int `yaml:"db" json:"db"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// 缓存条目生存时间
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
		TTL:      5 * time.Minute,
	}
}

// ResponseCache 工作流响应缓存
type ResponseCache struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// ErrMiss 缓存未命中
var ErrMiss = fmt.Errorf("cache miss")

// IsMiss 判断是否为缓存未命中错误
func IsMiss(err error) bool {
	return err == ErrMiss
}

// New 创建响应缓存并验证 Redis 连通性
func New(config Config, logger *zap.Logger) (*ResponseCache, error) {
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c := &ResponseCache{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "response_cache")),
	}
	c.logger.Info("response cache initialized",
		zap.String("addr", config.Addr),
		zap.Duration("ttl", config.TTL),
	)
	return c, nil
}

// Key 由归一化请求文本派生缓存键
func Key(input string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(input)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "agentmesh:workflow:" + hex.EncodeToString(sum[:16])
}

// GetResponse 读取缓存的工作流响应
func (c *ResponseCache) GetResponse(ctx context.Context, input string) (orchestrator.Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var resp orchestrator.Response
	if c.closed {
		return resp, fmt.Errorf("response cache is closed")
	}

	val, err := c.redis.Get(ctx, Key(input)).Result()
	if err == redis.Nil {
		return resp, ErrMiss
	}
	if err != nil {
		c.logger.Error("cache get failed", zap.Error(err))
		return resp, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return resp, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return resp, nil
}

// PutResponse 写入工作流响应，使用配置的 TTL
func (c *ResponseCache) PutResponse(ctx context.Context, input string, resp orchestrator.Response) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("response cache is closed")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := c.redis.Set(ctx, Key(input), data, c.config.TTL).Err(); err != nil {
		c.logger.Error("cache set failed", zap.Error(err))
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Invalidate 删除某段请求文本的缓存条目
func (c *ResponseCache) Invalidate(ctx context.Context, input string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("response cache is closed")
	}
	return c.redis.Del(ctx, Key(input)).Err()
}

// Ping 检查 Redis 连接
func (c *ResponseCache) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("response cache is closed")
	}
	return c.redis.Ping(ctx).Err()
}

// Close 关闭缓存
func (c *ResponseCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("closing response cache")
	return c.redis.Close()
}
