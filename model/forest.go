package model

import (
	"context"
	"fmt"

	"github.com/rushteam/placekit/core"
)

func init() {
	Register("random_forest", buildRandomForest)
}

// Tree 是单棵决策树，字段与 sklearn 的 tree_ 导出一致：
//   - ChildrenLeft[i] == -1 表示叶子节点
//   - 非叶子节点：x[Feature[i]] <= Threshold[i] 走左子树，否则走右子树
//   - Value[i] 为叶子节点上两类样本的计数（或占比）：[not_placed, placed]
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 {
			if right != -1 {
				return fmt.Errorf("node %d: leaf with right child", i)
			}
			v := t.Value[i]
			if len(v) != 2 || v[0] < 0 || v[1] < 0 || v[0]+v[1] <= 0 {
				return fmt.Errorf("node %d: leaf value must be two non-negative class weights", i)
			}
			continue
		}
		// 子节点下标必须大于父节点（sklearn 深度优先编号），保证遍历一定终止
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if f := t.Feature[i]; f < 0 || f >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, f)
		}
	}
	return nil
}

// predict 返回叶子节点上归一化后的两类概率
func (t *Tree) predict(x []float64) (float64, float64) {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	v := t.Value[node]
	sum := v[0] + v[1]
	return v[0] / sum, v[1] / sum
}

// RandomForest 随机森林分类器。
//
// 预测原理（与 sklearn RandomForestClassifier.predict_proba 一致）：
// 每棵树给出叶子节点上的类别分布，森林取所有树的平均值。
type RandomForest struct {
	Trees    []Tree
	features int
}

// NewRandomForest 创建随机森林并校验每棵树的结构
func NewRandomForest(numFeatures int, trees []Tree) (*RandomForest, error) {
	if numFeatures <= 0 {
		return nil, fmt.Errorf("random forest: n_features must be positive")
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("random forest: no trees")
	}
	for i := range trees {
		if err := trees[i].validate(numFeatures); err != nil {
			return nil, fmt.Errorf("random forest: tree %d: %w", i, err)
		}
	}
	return &RandomForest{Trees: trees, features: numFeatures}, nil
}

func buildRandomForest(spec map[string]any) (core.Classifier, error) {
	var raw struct {
		NumFeatures int    `json:"n_features"`
		Trees       []Tree `json:"trees"`
	}
	if err := decodeSpec(spec, &raw); err != nil {
		return nil, fmt.Errorf("random forest: %w", err)
	}
	return NewRandomForest(raw.NumFeatures, raw.Trees)
}

func (m *RandomForest) Name() string { return "random_forest" }

func (m *RandomForest) NumFeatures() int { return m.features }

func (m *RandomForest) Classify(_ context.Context, normalized []float64) (core.Classification, error) {
	if len(normalized) != m.features {
		return core.Classification{}, fmt.Errorf("random forest: expected %d features, got %d", m.features, len(normalized))
	}
	var p0, p1 float64
	for i := range m.Trees {
		a, b := m.Trees[i].predict(normalized)
		p0 += a
		p1 += b
	}
	n := float64(len(m.Trees))
	return core.NewClassification(p0/n, p1/n), nil
}

var _ core.Classifier = (*RandomForest)(nil)
