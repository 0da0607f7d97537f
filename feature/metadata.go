package feature

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rushteam/placekit/core"
)

// NumFeatures 模型输入维度
const NumFeatures = 10

// FeatureColumns 模型输入特征列（按顺序）。
//
// 顺序是与训练产物之间的契约：训练任务按同样的顺序写入 model_metadata.json 的 features，
// 加载时通过 ModelMetadata.ValidateSchema 校验，顺序不一致的产物会被拒绝。
var FeatureColumns = []string{
	core.FieldBranch,
	core.FieldGender,
	core.FieldCGPA,
	core.FieldBacklogs,
	core.FieldDSAScore,
	core.FieldProjects,
	core.FieldLeetCodeProblems,
	core.FieldCertifications,
	core.FieldInternship,
	core.FieldCommunicationScore,
}

// DefaultBranches 元数据不可用时 /branches 返回的专业列表
var DefaultBranches = []string{"CSE", "ISE", "ECE", "EEE", "ETE", "AIML", "Mechanical", "Civil"}

// DefaultFeatureImportance 元数据缺少 feature_importance 时使用的固定权重（百分比）。
// 不含 Gender；数值照原样保留，不做归一化。
func DefaultFeatureImportance() map[string]float64 {
	return map[string]float64{
		core.FieldDSAScore:           25,
		core.FieldCGPA:               20,
		core.FieldProjects:           15,
		core.FieldBranch:             12,
		core.FieldLeetCodeProblems:   10,
		core.FieldCertifications:     8,
		core.FieldCommunicationScore: 5,
		core.FieldInternship:         3,
		core.FieldBacklogs:           2,
	}
}

// ModelMetadata 模型元数据，对应 model_metadata.json
type ModelMetadata struct {
	// Features 特征列名列表（按顺序）
	Features []string `json:"features"`
	// Target 标签列名
	Target string `json:"target"`
	// Accuracy 测试集准确率（百分比）
	Accuracy *float64 `json:"accuracy"`
	// CVAccuracy 交叉验证准确率（百分比）
	CVAccuracy *float64 `json:"cv_accuracy"`
	// FeatureImportance 特征重要性（百分比）
	FeatureImportance map[string]float64 `json:"feature_importance"`
	// Branches 训练数据中出现过的专业
	Branches []string `json:"branches"`
	// NSamples 训练样本数
	NSamples int `json:"n_samples"`
}

// DecodeMetadata 解析 model_metadata.json 并校验特征顺序
func DecodeMetadata(data []byte) (*ModelMetadata, error) {
	var meta ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("解析模型元数据失败: %w", err)
	}
	if err := meta.ValidateSchema(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ValidateSchema 校验元数据中的特征顺序与 FeatureColumns 完全一致
func (m *ModelMetadata) ValidateSchema() error {
	return validateColumns("metadata", m.Features)
}

// Importance 返回特征重要性的副本；元数据没有 feature_importance 字段时返回 DefaultFeatureImportance。
// 显式给出的空对象原样返回空表。
func (m *ModelMetadata) Importance() map[string]float64 {
	if m == nil || m.FeatureImportance == nil {
		return DefaultFeatureImportance()
	}
	out := make(map[string]float64, len(m.FeatureImportance))
	for k, v := range m.FeatureImportance {
		out[k] = v
	}
	return out
}

// BranchList 返回专业列表；元数据不可用或为空时返回 DefaultBranches
func (m *ModelMetadata) BranchList() []string {
	if m == nil || len(m.Branches) == 0 {
		return append([]string(nil), DefaultBranches...)
	}
	return append([]string(nil), m.Branches...)
}

// Scaler 特征标准化器，对应 scaler.json（StandardScaler 的 mean_ / scale_）。
// 按位置作用于 EncodedVector，只接受长度为 NumFeatures 的向量。
type Scaler struct {
	// Features 拟合时的特征顺序（可选，提供时必须与 FeatureColumns 一致）
	Features []string `json:"features"`
	// Mean 均值
	Mean []float64 `json:"mean"`
	// Scale 标准差（0 视为 1，与 StandardScaler 对常数列的处理一致）
	Scale []float64 `json:"scale"`
}

// DecodeScaler 解析 scaler.json 并校验维度
func DecodeScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("解析特征标准化器失败: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 校验标准化器维度与特征顺序
func (s *Scaler) Validate() error {
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("scaler: expected %d means and scales, got %d and %d", NumFeatures, len(s.Mean), len(s.Scale))
	}
	if len(s.Features) > 0 {
		return validateColumns("scaler", s.Features)
	}
	return nil
}

// Transform 对向量做 Z-score 标准化
//
// 公式：normalized = (x - mean) / scale
func (s *Scaler) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: vector has %d features, fitted on %d", len(vector), len(s.Mean))
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func validateColumns(source string, got []string) error {
	if len(got) != len(FeatureColumns) {
		return fmt.Errorf("%s: feature schema mismatch: expected %d features [%s], got %d [%s]",
			source, len(FeatureColumns), strings.Join(FeatureColumns, ","), len(got), strings.Join(got, ","))
	}
	for i, col := range FeatureColumns {
		if got[i] != col {
			return fmt.Errorf("%s: feature schema mismatch at position %d: expected %q, got %q", source, i, col, got[i])
		}
	}
	return nil
}
