package model

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/placekit/core"
)

func init() {
	Register("logistic_regression", buildLogisticRegression)
}

// LogisticRegression 实现了逻辑回归 (Logistic Regression) 分类器。
//
// 预测原理：
// 1. 线性加权求和: z = Intercept + sum(Coef_i * x_i)
// 2. Sigmoid 变换: P(placed) = 1 / (1 + exp(-z))
//
// Coef 按特征向量的位置排列。
type LogisticRegression struct {
	Intercept float64   // 偏置项 (Bias / Intercept)
	Coef      []float64 // 特征权重 (Weights / Coefficients)
}

func buildLogisticRegression(spec map[string]any) (core.Classifier, error) {
	var raw struct {
		Intercept float64   `json:"intercept"`
		Coef      []float64 `json:"coef"`
	}
	if err := decodeSpec(spec, &raw); err != nil {
		return nil, fmt.Errorf("logistic regression: %w", err)
	}
	if len(raw.Coef) == 0 {
		return nil, fmt.Errorf("logistic regression: coef is empty")
	}
	return &LogisticRegression{Intercept: raw.Intercept, Coef: raw.Coef}, nil
}

func (m *LogisticRegression) Name() string { return "logistic_regression" }

func (m *LogisticRegression) NumFeatures() int { return len(m.Coef) }

func (m *LogisticRegression) Classify(_ context.Context, normalized []float64) (core.Classification, error) {
	if len(normalized) != len(m.Coef) {
		return core.Classification{}, fmt.Errorf("logistic regression: expected %d features, got %d", len(m.Coef), len(normalized))
	}
	z := m.Intercept
	for i, w := range m.Coef {
		z += w * normalized[i]
	}
	p := 1 / (1 + math.Exp(-z))
	return core.NewClassification(1-p, p), nil
}

var _ core.Classifier = (*LogisticRegression)(nil)
