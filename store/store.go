package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/placekit/core"
)

// 注意：此包只包含实现，接口定义在 core 包（core.Store）。

// 支持的后端
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config 缓存存储配置
type Config struct {
	Backend   string
	RedisAddr string
	RedisDB   int
}

// New 按配置创建存储；backend 为 none 或空时返回 nil, nil
func New(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryStore(time.Minute), nil
	case BackendRedis:
		rs, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, fmt.Sprintf("unknown cache backend %q", cfg.Backend))
	}
}
