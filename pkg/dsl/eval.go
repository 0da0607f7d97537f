package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/placekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，变量与 ResolvedProfile 的字段一一对应
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("branch", cel.StringType),
		cel.Variable("gender", cel.StringType),
		cel.Variable("cgpa", cel.DoubleType),
		cel.Variable("backlogs", cel.IntType),
		cel.Variable("dsa_score", cel.IntType),
		cel.Variable("projects", cel.IntType),
		cel.Variable("leetcode_problems", cel.IntType),
		cel.Variable("certifications", cel.IntType),
		cel.Variable("internship", cel.BoolType),
		cel.Variable("communication_score", cel.IntType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的画像条件表达式，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：cgpa < 6.5 / dsa_score >= 60
//   - 逻辑：cgpa >= 7.5 && backlogs == 0
//   - 包含：branch in ["CSE", "ISE", "AIML"]
//   - 取反：!internship
//
// 注意 cgpa 是 double，与整数字面量比较时要写成 7.0 而不是 7。
//
// 编译一次，可被多个 goroutine 并发求值。
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式，结果类型必须为 bool
func Compile(expr string) (*Expr, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

// MustCompile 与 Compile 相同，失败时 panic（用于内置规则）
func MustCompile(expr string) *Expr {
	e, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("dsl: %q: %v", expr, err))
	}
	return e
}

// String 返回原始表达式
func (e *Expr) String() string { return e.source }

// Evaluate 对画像求值
func (e *Expr) Evaluate(p core.ResolvedProfile) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(p))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(p core.ResolvedProfile) map[string]any {
	return map[string]any{
		"branch":              p.Branch,
		"gender":              p.Gender,
		"cgpa":                p.CGPA,
		"backlogs":            int64(p.Backlogs),
		"dsa_score":           int64(p.DSAScore),
		"projects":            int64(p.Projects),
		"leetcode_problems":   int64(p.LeetCodeProblems),
		"certifications":      int64(p.Certifications),
		"internship":          p.Internship,
		"communication_score": int64(p.CommunicationScore),
	}
}
