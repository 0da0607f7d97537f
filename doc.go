// Package placekit 是一个学生就业（placement）预测服务。
//
// 设计要点：
// - Artifacts-first: 分类器、标准化参数、类别编码和训练元数据都是离线产物，启动时一次加载，之后只读
// - Resolve-then-encode: 原始画像先补默认值，再按固定特征顺序编码、标准化
// - Rules-as-data: 提示规则是 CEL 表达式，可以通过 YAML 替换
package placekit

import (
	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/service"
)

// 轻量 facade：便于用户直接 import "placekit" 使用核心抽象。
type (
	PredictionService = service.PredictionService
	RawProfile        = core.RawProfile
	PredictionResult  = core.PredictionResult
	Classifier        = core.Classifier
	Classification    = core.Classification
)

var NewPredictionService = service.NewPredictionService
