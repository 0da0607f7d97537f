package feature

import (
	"encoding/json"
	"fmt"

	"github.com/rushteam/placekit/core"
)

// 未知类别的兜底策略：
//   - Branch 回退到 "CSE" 的编码
//   - Gender 回退到固定编码 0（没有规范的默认类别）
//   - 其他类别字段回退到 0
const (
	FallbackBranch     = "CSE"
	FallbackGenderCode = 0
)

// LabelEncoder Label 编码（标签编码）
// 将类别映射为整数（0, 1, 2, ...），编码即类别在 classes_ 中的下标。
// 构建后只读，可被并发请求共享。
type LabelEncoder struct {
	LabelMap map[string]map[string]int // 每个特征名对应的类别到整数的映射
	classes  map[string][]string
}

// NewLabelEncoder 创建 Label 编码器
//
// classes 为每个特征名对应的类别列表（训练时 LabelEncoder.classes_ 的顺序）。
func NewLabelEncoder(classes map[string][]string) *LabelEncoder {
	e := &LabelEncoder{
		LabelMap: make(map[string]map[string]int, len(classes)),
		classes:  make(map[string][]string, len(classes)),
	}
	for field, values := range classes {
		m := make(map[string]int, len(values))
		for i, v := range values {
			if _, dup := m[v]; !dup {
				m[v] = i
			}
		}
		e.LabelMap[field] = m
		e.classes[field] = append([]string(nil), values...)
	}
	return e
}

// DecodeEncoders 解析 encoders.json
//
// 格式：{"Branch": ["AIML", "CSE", ...], "Gender": ["Female", "Male"]}
// Branch 必须包含 FallbackBranch，否则兜底策略无法成立。
func DecodeEncoders(data []byte) (*LabelEncoder, error) {
	var classes map[string][]string
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("解析类别编码器失败: %w", err)
	}
	e := NewLabelEncoder(classes)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate 校验必需的编码表
func (e *LabelEncoder) Validate() error {
	for _, field := range []string{core.FieldBranch, core.FieldGender} {
		if len(e.LabelMap[field]) == 0 {
			return fmt.Errorf("encoders: missing classes for %s", field)
		}
	}
	if _, ok := e.LabelMap[core.FieldBranch][FallbackBranch]; !ok {
		return fmt.Errorf("encoders: %s classes do not include fallback %q", core.FieldBranch, FallbackBranch)
	}
	return nil
}

// Classes 返回某个字段的类别列表（副本）
func (e *LabelEncoder) Classes(field string) []string {
	return append([]string(nil), e.classes[field]...)
}

// Lookup 查找类别编码，不做兜底
func (e *LabelEncoder) Lookup(field, value string) (int, bool) {
	labelMap, ok := e.LabelMap[field]
	if !ok {
		return 0, false
	}
	code, ok := labelMap[value]
	return code, ok
}

// Encode 编码单个类别值，未知类别按兜底策略处理，不会失败
func (e *LabelEncoder) Encode(field, value string) int {
	code, _ := e.EncodeWithFallback(field, value)
	return code
}

// EncodeWithFallback 编码单个类别值，第二个返回值表示是否走了兜底
func (e *LabelEncoder) EncodeWithFallback(field, value string) (int, bool) {
	if code, ok := e.Lookup(field, value); ok {
		return code, false
	}
	switch field {
	case core.FieldBranch:
		code, _ := e.Lookup(core.FieldBranch, FallbackBranch)
		return code, true
	case core.FieldGender:
		return FallbackGenderCode, true
	default:
		return 0, true
	}
}
