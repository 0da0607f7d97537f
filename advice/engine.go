package advice

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/pkg/dsl"
)

// RuleSet 是规则文件的结构（YAML）。
//
//	rules:
//	  - group: cgpa
//	    when: "cgpa < 6.5"
//	    tip: "..."
type RuleSet struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// LoadRules 从 YAML 文件加载规则
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules 解析 YAML 规则文档
func ParseRules(data []byte) ([]Rule, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(set.Rules) == 0 {
		return nil, fmt.Errorf("rules file has no rules")
	}
	return set.Rules, nil
}

type compiledRule struct {
	Rule
	expr *dsl.Expr
}

// TipEngine 根据画像生成改进提示。
//
// 提示只看画像本身（已填充默认值、未编码），与模型的判定结果无关。
// 构建后只读，可并发调用 Generate。
type TipEngine struct {
	rules  []compiledRule
	logger *zap.Logger
}

// NewTipEngine 编译规则；任意表达式编译失败都会返回错误
func NewTipEngine(rules []Rule, logger *zap.Logger) (*TipEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Tip == "" {
			return nil, fmt.Errorf("rule %d: tip is empty", i)
		}
		expr, err := dsl.Compile(r.When)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.When, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, expr: expr})
	}
	return &TipEngine{rules: compiled, logger: logger}, nil
}

// NewDefaultTipEngine 使用内置规则创建 TipEngine；内置规则编译失败直接 panic
func NewDefaultTipEngine(logger *zap.Logger) *TipEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := DefaultRules()
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		compiled[i] = compiledRule{Rule: r, expr: dsl.MustCompile(r.When)}
	}
	return &TipEngine{rules: compiled, logger: logger}
}

// Generate 按规则顺序输出命中的提示，每组最多一条
func (e *TipEngine) Generate(p core.ResolvedProfile) []string {
	tips := make([]string, 0, 4)
	matched := make(map[string]bool)
	for _, r := range e.rules {
		if r.Group != "" && matched[r.Group] {
			continue
		}
		ok, err := r.expr.Evaluate(p)
		if err != nil {
			e.logger.Warn("tip rule evaluation failed", zap.String("when", r.When), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if r.Group != "" {
			matched[r.Group] = true
		}
		tips = append(tips, r.Tip)
	}
	return tips
}
