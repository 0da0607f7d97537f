package core

import "context"

// Classifier 是二分类模型的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（model）实现
//   - 模型由外部训练任务产出，服务端只负责推理，不关心内部算法
//   - 输入是已标准化的定长特征向量，顺序与训练时一致
//
// 实现：
//   - model.RandomForest 本地随机森林
//   - model.LogisticRegression 本地逻辑回归
//   - model.KServeClassifier 远程 KServe 推理服务
type Classifier interface {
	// Name 返回模型名称（用于日志/监控）
	Name() string

	// NumFeatures 返回模型期望的输入维度
	NumFeatures() int

	// Classify 对单个标准化向量进行分类
	Classify(ctx context.Context, normalized []float64) (Classification, error)
}

// Classification 是一次分类的结果。
// ProbNotPlaced + ProbPlaced 在浮点误差范围内等于 1。
type Classification struct {
	Placed        bool    `json:"placed"`
	ProbNotPlaced float64 `json:"prob_not_placed"`
	ProbPlaced    float64 `json:"prob_placed"`
}

// NewClassification 由两类概率构建分类结果（先归一化，再按 argmax 取标签）。
// 两类概率相等时取 not placed，与 argmax 取第一个最大值一致。
func NewClassification(probNotPlaced, probPlaced float64) Classification {
	sum := probNotPlaced + probPlaced
	if sum > 0 {
		probNotPlaced /= sum
		probPlaced /= sum
	}
	return Classification{
		Placed:        probPlaced > probNotPlaced,
		ProbNotPlaced: probNotPlaced,
		ProbPlaced:    probPlaced,
	}
}
