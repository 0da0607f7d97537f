package artifact

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/placekit/core"
)

// Store 持有启动时加载的产物。
//
// 两种状态：
//   - 可用：Bundle 已加载并通过校验
//   - 不可用：加载失败，Err 记录原因；预测返回 UNAVAILABLE，
//     /health 和 /branches 仍然可以服务
//
// 状态在构建时确定，之后只读。
type Store struct {
	bundle *Bundle
	err    error
}

// NewStore 包装一个已加载的 Bundle
func NewStore(b *Bundle) *Store {
	return &Store{bundle: b}
}

// Unavailable 创建不可用状态的 Store
func Unavailable(err error) *Store {
	if err == nil {
		err = core.NewDomainError(core.ModuleArtifact, core.ErrorCodeUnavailable, "model artifacts not loaded")
	}
	return &Store{err: err}
}

// Open 从 src 加载产物；失败时记录错误并返回不可用的 Store，不会返回 nil
func Open(ctx context.Context, src Source, files Files, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	b, err := Load(ctx, src, files)
	if err != nil {
		fields := []zap.Field{zap.String("source", src.Name()), zap.Error(err)}
		if de := core.GetDomainError(err); de != nil && de.Err != nil {
			fields = append(fields, zap.NamedError("cause", de.Err))
		}
		logger.Error("model artifacts unavailable", fields...)
		return Unavailable(err)
	}

	meta := b.Metadata
	fields := []zap.Field{
		zap.String("source", src.Name()),
		zap.String("classifier", b.Classifier.Name()),
		zap.Strings("branches", meta.BranchList()),
		zap.Int("n_samples", meta.NSamples),
	}
	if meta.Accuracy != nil {
		fields = append(fields, zap.Float64("accuracy", *meta.Accuracy))
	}
	logger.Info("model artifacts loaded", fields...)
	return NewStore(b)
}

// Bundle 返回产物；不可用时第二个返回值为 false
func (s *Store) Bundle() (*Bundle, bool) {
	if s == nil || s.bundle == nil {
		return nil, false
	}
	return s.bundle, true
}

// Loaded 产物是否可用
func (s *Store) Loaded() bool {
	_, ok := s.Bundle()
	return ok
}

// Err 返回加载失败的原因（可用时为 nil）
func (s *Store) Err() error {
	if s == nil {
		return Unavailable(nil).err
	}
	return s.err
}
