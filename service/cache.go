package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/placekit/artifact"
	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feature"
	"github.com/rushteam/placekit/observability"
)

// ClassificationCache 缓存分类器输出。
//
// key 由编码后的特征向量和产物指纹计算，产物更新后旧缓存自然失效。
// 只缓存分类结果，不缓存提示：提示依赖原始取值（例如未知专业与 CSE 编码相同但提示不同）。
// 读写失败只记日志，调用方回退到直接分类。
type ClassificationCache struct {
	store       core.Store
	ttl         time.Duration
	fingerprint string
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewClassificationCache 创建分类缓存
func NewClassificationCache(store core.Store, ttl time.Duration, fingerprint string, metrics *observability.Metrics, logger *zap.Logger) *ClassificationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationCache{
		store:       store,
		ttl:         ttl,
		fingerprint: fingerprint,
		metrics:     metrics,
		logger:      logger,
	}
}

// Fingerprint 计算产物指纹（分类器 + 训练元数据）
func Fingerprint(b *artifact.Bundle) string {
	meta := b.Metadata
	accuracy := "na"
	if meta.Accuracy != nil {
		accuracy = fmt.Sprintf("%g", *meta.Accuracy)
	}
	return fmt.Sprintf("%s/%d/%s", b.Classifier.Name(), meta.NSamples, accuracy)
}

// Key 计算向量的缓存 key
func (c *ClassificationCache) Key(v feature.EncodedVector) string {
	h := sha256.New()
	h.Write([]byte(c.fingerprint))
	var buf [8]byte
	for _, x := range v {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return "cls:" + hex.EncodeToString(h.Sum(nil))
}

// Get 读取缓存；未命中或出错时第二个返回值为 false
func (c *ClassificationCache) Get(ctx context.Context, v feature.EncodedVector) (core.Classification, bool) {
	data, err := c.store.Get(ctx, c.Key(v))
	if err != nil {
		if core.IsStoreNotFound(err) {
			c.metrics.IncCacheLookup(observability.CacheMiss)
		} else {
			c.metrics.IncCacheLookup(observability.CacheError)
			c.logger.Warn("classification cache read failed", zap.String("store", c.store.Name()), zap.Error(err))
		}
		return core.Classification{}, false
	}

	var cls core.Classification
	if err := json.Unmarshal(data, &cls); err != nil {
		c.metrics.IncCacheLookup(observability.CacheError)
		c.logger.Warn("classification cache entry corrupt", zap.Error(err))
		return core.Classification{}, false
	}
	c.metrics.IncCacheLookup(observability.CacheHit)
	return cls, true
}

// Put 写入缓存
func (c *ClassificationCache) Put(ctx context.Context, v feature.EncodedVector, cls core.Classification) {
	data, err := json.Marshal(cls)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.Key(v), data, c.ttl); err != nil {
		c.logger.Warn("classification cache write failed", zap.String("store", c.store.Name()), zap.Error(err))
	}
}
