// Package conv 提供类型转换工具，用于把弱类型请求字段（JSON 数字、数字字符串、布尔）
// 统一转换为强类型值。
package conv

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToFloat64 将 any 转为 float64（不解析字符串）。
// 支持 float64、float32、int、int64、int32、json.Number；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ParseFloat 将数字或数字字符串转为 float64。
// 字符串会去掉首尾空白后解析；NaN / Inf 视为非法值。
func ParseFloat(v any) (float64, error) {
	var (
		f  float64
		ok bool
	)
	if s, isStr := v.(string); isStr {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		f, ok = parsed, err == nil
	} else {
		f, ok = ToFloat64(v)
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %s", Describe(v))
	}
	return f, nil
}

// ParseInt 将数字或整数字符串转为 int。
// 浮点数向零截断（7.9 -> 7）；字符串必须是十进制整数（"7.5" 非法）。
func ParseInt(v any) (int, error) {
	if s, isStr := v.(string); isStr {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %s", Describe(v))
		}
		return n, nil
	}
	f, ok := ToFloat64(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer: %s", Describe(v))
	}
	return int(f), nil
}

// Truthy 按“真值”规则把任意值转为 bool，不会失败。
//   - nil、false、0、空串、空数组、空对象为 false
//   - strconv.ParseBool 能识别的字符串按其含义（"false" / "0" 为 false）
//   - 其他非空字符串、非 0 数字、非空数组/对象为 true
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		if val == "" {
			return false
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
		return true
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	if f, ok := ToFloat64(v); ok {
		return f != 0
	}
	return true
}

// ToString 将类别值转为字符串，非字符串值按 %v 格式化。
func ToString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Describe 返回值的可读描述，用于错误消息（字符串带引号）。
func Describe(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

// ConfigGet 从 map[string]any（如 YAML/JSON 解析结果）按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}
