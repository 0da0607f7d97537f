package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/pkg/conv"
)

// Builder 根据模型描述（placement_model.json 解析后的 map）构建分类器。
// 各模型实现在 init 中调用 Register(typeName, builder) 即可被产物加载流程识别。
type Builder func(spec map[string]any) (core.Classifier, error)

var (
	builders   = make(map[string]Builder)
	buildersMu sync.RWMutex
)

// Register 注册一种模型的构建逻辑
func Register(typeName string, builder Builder) {
	if typeName == "" || builder == nil {
		return
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[typeName] = builder
}

// RegisteredTypes 返回已注册的模型类型（排序后）
func RegisteredTypes() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 按 spec["type"] 选择构建器
func Build(spec map[string]any) (core.Classifier, error) {
	typeName := conv.ConfigGet(spec, "type", "")
	if typeName == "" {
		return nil, fmt.Errorf("model: type not found")
	}
	buildersMu.RLock()
	builder, ok := builders[typeName]
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("model: unknown type %q (registered: %v)", typeName, RegisteredTypes())
	}
	return builder(spec)
}

// Decode 解析 placement_model.json 并构建分类器
func Decode(data []byte) (core.Classifier, error) {
	var spec map[string]any
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("解析模型文件失败: %w", err)
	}
	return Build(spec)
}

// decodeSpec 把通用 map 解码为具体模型的参数结构（字段按 json tag 匹配）
func decodeSpec(spec map[string]any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(spec)
}
