package artifact

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feature"
	"github.com/rushteam/placekit/model"
)

// Files 产物文件名
type Files struct {
	Model    string
	Scaler   string
	Encoders string
	Metadata string
}

// DefaultFiles 训练任务产出的默认文件名
func DefaultFiles() Files {
	return Files{
		Model:    "placement_model.json",
		Scaler:   "scaler.json",
		Encoders: "encoders.json",
		Metadata: "model_metadata.json",
	}
}

func (f Files) withDefaults() Files {
	d := DefaultFiles()
	if f.Model == "" {
		f.Model = d.Model
	}
	if f.Scaler == "" {
		f.Scaler = d.Scaler
	}
	if f.Encoders == "" {
		f.Encoders = d.Encoders
	}
	if f.Metadata == "" {
		f.Metadata = d.Metadata
	}
	return f
}

// Bundle 一次训练产出的完整推理产物。
// 构建后只读，所有请求共享同一个 Bundle，无需加锁。
type Bundle struct {
	Classifier core.Classifier
	Scaler     *feature.Scaler
	Encoder    *feature.LabelEncoder
	Metadata   *feature.ModelMetadata
}

// Validate 校验产物之间的一致性
func (b *Bundle) Validate() error {
	if b.Classifier == nil || b.Scaler == nil || b.Encoder == nil || b.Metadata == nil {
		return fmt.Errorf("bundle is incomplete")
	}
	if err := b.Metadata.ValidateSchema(); err != nil {
		return err
	}
	if err := b.Scaler.Validate(); err != nil {
		return err
	}
	if err := b.Encoder.Validate(); err != nil {
		return err
	}
	if n := b.Classifier.NumFeatures(); n != feature.NumFeatures {
		return fmt.Errorf("classifier %s expects %d features, vector has %d", b.Classifier.Name(), n, feature.NumFeatures)
	}
	return nil
}

// Load 并发读取四个产物并校验
func Load(ctx context.Context, src Source, files Files) (*Bundle, error) {
	files = files.withDefaults()
	var b Bundle

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		data, err := readAll(ctx, src, files.Model)
		if err != nil {
			return fmt.Errorf("model: %w", err)
		}
		c, err := model.Decode(data)
		if err != nil {
			return fmt.Errorf("model: %w", err)
		}
		b.Classifier = c
		return nil
	})
	eg.Go(func() error {
		data, err := readAll(ctx, src, files.Scaler)
		if err != nil {
			return fmt.Errorf("scaler: %w", err)
		}
		s, err := feature.DecodeScaler(data)
		if err != nil {
			return err
		}
		b.Scaler = s
		return nil
	})
	eg.Go(func() error {
		data, err := readAll(ctx, src, files.Encoders)
		if err != nil {
			return fmt.Errorf("encoders: %w", err)
		}
		e, err := feature.DecodeEncoders(data)
		if err != nil {
			return err
		}
		b.Encoder = e
		return nil
	})
	eg.Go(func() error {
		data, err := readAll(ctx, src, files.Metadata)
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		m, err := feature.DecodeMetadata(data)
		if err != nil {
			return err
		}
		b.Metadata = m
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeUnavailable, "load artifacts from "+src.Name(), err)
	}

	if err := b.Validate(); err != nil {
		return nil, core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeUnavailable, "invalid artifacts from "+src.Name(), err)
	}
	return &b, nil
}
