package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/placekit/advice"
	"github.com/rushteam/placekit/artifact"
	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feast"
	"github.com/rushteam/placekit/observability"
	"github.com/rushteam/placekit/service"
	"github.com/rushteam/placekit/store"
)

// app 持有一次运行所需的全部组件
type app struct {
	cfg       *Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	artifacts *artifact.Store
	svc       *service.PredictionService

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
}

func artifactSource(cfg ArtifactsConfig) artifact.Source {
	if cfg.Source == "http" {
		return artifact.NewHTTPSource(cfg.BaseURL, cfg.Timeout)
	}
	return artifact.NewFileSource(cfg.Dir)
}

func artifactFiles(cfg ArtifactsConfig) artifact.Files {
	return artifact.Files{
		Model:    cfg.ModelFile,
		Scaler:   cfg.ScalerFile,
		Encoders: cfg.EncodersFile,
		Metadata: cfg.MetadataFile,
	}
}

// newApp 加载产物并组装预测服务。
// 产物加载失败不会返回错误：服务以不可用状态启动，/health 和 /branches 照常工作。
func newApp(ctx context.Context, cfg *Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
	}

	a.artifacts = artifact.Open(ctx, artifactSource(cfg.Artifacts), artifactFiles(cfg.Artifacts), logger)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(a.metrics),
	}

	if cfg.Tips.RulesFile != "" {
		rules, err := advice.LoadRules(cfg.Tips.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading tip rules: %w", err)
		}
		engine, err := advice.NewTipEngine(rules, logger)
		if err != nil {
			return nil, fmt.Errorf("compiling tip rules: %w", err)
		}
		logger.Info("tip rules loaded", zap.String("file", cfg.Tips.RulesFile), zap.Int("rules", len(rules)))
		opts = append(opts, service.WithTipEngine(engine))
	}

	cache, err := store.New(ctx, store.Config{
		Backend:   cfg.Cache.Backend,
		RedisAddr: cfg.Cache.Redis.Addr,
		RedisDB:   cfg.Cache.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	if cache != nil {
		a.closers = append(a.closers, cache.Close)
		opts = append(opts, service.WithCache(cache, cfg.Cache.TTL))
		logger.Info("classification cache enabled", zap.String("backend", cache.Name()), zap.Duration("ttl", cfg.Cache.TTL))
	}

	if cfg.Feast.Enabled {
		var feastOpts []feast.ClientOption
		if cfg.Feast.Token != "" {
			feastOpts = append(feastOpts, feast.WithStaticToken(cfg.Feast.Token, false))
		}
		client, err := feast.NewGrpcClient(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project, feastOpts...)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		opts = append(opts, service.WithProfileEnricher(
			feast.NewProfileSource(client, cfg.Feast.Project, cfg.Feast.FeatureView, logger),
		))
		logger.Info("feast profile enrichment enabled", zap.String("endpoint", client.Endpoint))
	}

	a.svc = service.NewPredictionService(a.artifacts, opts...)
	return a, nil
}

// artifactsError 产物不可用时返回加载原因
func (a *app) artifactsError() error {
	if a.artifacts.Loaded() {
		return nil
	}
	err := a.artifacts.Err()
	if de := core.GetDomainError(err); de != nil && de.Err != nil {
		return fmt.Errorf("%s: %w", de.Message, de.Err)
	}
	return err
}
