package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/placekit/advice"
	"github.com/rushteam/placekit/artifact"
	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feature"
	"github.com/rushteam/placekit/observability"
)

// ErrModelNotLoaded 产物不可用时预测返回的错误
var ErrModelNotLoaded = core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "model not loaded")

// ProfileEnricher 在解析前补全画像（例如按学号查询在线特征）
type ProfileEnricher interface {
	Enrich(ctx context.Context, raw core.RawProfile) core.RawProfile
}

// HealthStatus /health 的响应体
type HealthStatus struct {
	Status      string   `json:"status"`
	ModelLoaded bool     `json:"model_loaded"`
	Accuracy    *float64 `json:"accuracy"`
}

// PredictionService 编排一次预测：补全 -> 解析 -> 编码 -> 标准化 -> 分类 -> 组装结果。
//
// 依赖的产物在构建时确定，之后只读，可被并发请求共享。
type PredictionService struct {
	artifacts *artifact.Store
	builder   *feature.VectorBuilder
	tips      *advice.TipEngine
	profiles  ProfileEnricher
	cache     *ClassificationCache
	metrics   *observability.Metrics
	logger    *zap.Logger

	cacheStore core.Store
	cacheTTL   time.Duration
}

// Option 配置 PredictionService
type Option func(*PredictionService)

// WithTipEngine 替换默认提示规则
func WithTipEngine(e *advice.TipEngine) Option {
	return func(s *PredictionService) {
		s.tips = e
	}
}

// WithProfileEnricher 设置画像补全
func WithProfileEnricher(p ProfileEnricher) Option {
	return func(s *PredictionService) {
		s.profiles = p
	}
}

// WithCache 启用分类结果缓存；store 为 nil 时不启用
func WithCache(store core.Store, ttl time.Duration) Option {
	return func(s *PredictionService) {
		s.cacheStore = store
		s.cacheTTL = ttl
	}
}

// WithMetrics 设置指标
func WithMetrics(m *observability.Metrics) Option {
	return func(s *PredictionService) {
		s.metrics = m
	}
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *PredictionService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPredictionService 创建预测服务
func NewPredictionService(artifacts *artifact.Store, opts ...Option) *PredictionService {
	s := &PredictionService{
		artifacts: artifacts,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tips == nil {
		s.tips = advice.NewDefaultTipEngine(s.logger)
	}

	s.metrics.SetArtifactsLoaded(artifacts.Loaded())
	if b, ok := artifacts.Bundle(); ok {
		s.builder = feature.NewVectorBuilder(b.Encoder, b.Scaler, feature.WithFallbackHook(s.onFallback))
		if s.cacheStore != nil {
			s.cache = NewClassificationCache(s.cacheStore, s.cacheTTL, Fingerprint(b), s.metrics, s.logger)
		}
	}
	return s
}

func (s *PredictionService) onFallback(field, value string) {
	s.metrics.IncFallback(field)
	if field == core.FieldBranch {
		s.logger.Warn("unknown branch, defaulting", zap.String("branch", value), zap.String("fallback", feature.FallbackBranch))
		return
	}
	s.logger.Debug("unknown category, using fallback code", zap.String("field", field), zap.String("value", value))
}

// Predict 对单个画像做出判定
func (s *PredictionService) Predict(ctx context.Context, raw core.RawProfile) (*core.PredictionResult, error) {
	result, err := s.predict(ctx, raw)
	switch {
	case err == nil:
		if result.Placed {
			s.metrics.IncPrediction(observability.OutcomePlaced)
		} else {
			s.metrics.IncPrediction(observability.OutcomeNotPlaced)
		}
	case core.IsInvalidInput(err):
		s.metrics.IncPrediction(observability.OutcomeInvalidInput)
	case core.IsUnavailable(err):
		s.metrics.IncPrediction(observability.OutcomeUnavailable)
	default:
		s.metrics.IncPrediction(observability.OutcomeError)
	}
	return result, err
}

func (s *PredictionService) predict(ctx context.Context, raw core.RawProfile) (*core.PredictionResult, error) {
	bundle, ok := s.artifacts.Bundle()
	if !ok {
		return nil, ErrModelNotLoaded
	}
	s.logger.Debug("prediction request", zap.Any("profile", map[string]any(raw)))

	if s.profiles != nil {
		raw = s.profiles.Enrich(ctx, raw)
	}

	parsed, err := feature.ParseProfile(raw)
	if err != nil {
		return nil, err
	}
	profile := feature.Resolve(parsed)

	encoded := s.builder.Build(profile)
	cls, err := s.classify(ctx, bundle, encoded)
	if err != nil {
		s.logger.Error("prediction failed", zap.String("classifier", bundle.Classifier.Name()), zap.Error(err))
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeInternalError, "prediction failed", err)
	}

	result := &core.PredictionResult{
		Placed:     cls.Placed,
		Confidence: round2(math.Max(cls.ProbPlaced, cls.ProbNotPlaced) * 100),
		Probability: core.Probability{
			Placed:    round2(cls.ProbPlaced * 100),
			NotPlaced: round2(cls.ProbNotPlaced * 100),
		},
		Tips:              s.tips.Generate(profile),
		FeatureImportance: bundle.Metadata.Importance(),
	}

	s.logger.Info("prediction",
		zap.Bool("placed", result.Placed),
		zap.Float64("confidence", result.Confidence),
		zap.Int("tips", len(result.Tips)),
	)
	return result, nil
}

func (s *PredictionService) classify(ctx context.Context, bundle *artifact.Bundle, encoded feature.EncodedVector) (core.Classification, error) {
	if s.cache != nil {
		if cls, ok := s.cache.Get(ctx, encoded); ok {
			return cls, nil
		}
	}

	normalized, err := s.builder.Normalize(encoded)
	if err != nil {
		return core.Classification{}, err
	}
	cls, err := bundle.Classifier.Classify(ctx, normalized)
	if err != nil {
		return core.Classification{}, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, encoded, cls)
	}
	return cls, nil
}

// Branches 返回可选专业；产物不可用或元数据未列出时返回默认列表
func (s *PredictionService) Branches() []string {
	if b, ok := s.artifacts.Bundle(); ok {
		return b.Metadata.BranchList()
	}
	return append([]string(nil), feature.DefaultBranches...)
}

// Health 返回服务状态；只要进程在运行，status 就是 healthy
func (s *PredictionService) Health() HealthStatus {
	h := HealthStatus{Status: "healthy"}
	if b, ok := s.artifacts.Bundle(); ok {
		h.ModelLoaded = true
		if acc := b.Metadata.Accuracy; acc != nil {
			v := *acc
			h.Accuracy = &v
		}
	}
	return h
}

// round2 保留两位小数
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
