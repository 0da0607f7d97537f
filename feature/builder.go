package feature

import (
	"fmt"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/pkg/conv"
)

// 字段缺失时的默认值。每次调用都按同样的规则填充，与模型状态无关。
const (
	DefaultBranch             = "CSE"
	DefaultGender             = "Male"
	DefaultCGPA               = 7.0
	DefaultBacklogs           = 0
	DefaultDSAScore           = 50
	DefaultProjects           = 1
	DefaultLeetCodeProblems   = 0
	DefaultCertifications     = 0
	DefaultInternship         = false
	DefaultCommunicationScore = 3
)

// EncodedVector 是编码后的特征向量，顺序与 FeatureColumns 一致
type EncodedVector [NumFeatures]float64

// ParseProfile 把弱类型请求转换为强类型画像。
//
// 缺失字段（或 null）保持为 nil；数值字段接受数字和数字字符串，
// 无法转换时返回 INVALID_INPUT 错误，错误消息包含字段名和原始值。
// Internship 按真值处理，不会失败。
func ParseProfile(raw core.RawProfile) (*core.StudentProfile, error) {
	p := &core.StudentProfile{}

	if raw.Has(core.FieldBranch) {
		s := conv.ToString(raw[core.FieldBranch])
		p.Branch = &s
	}
	if raw.Has(core.FieldGender) {
		s := conv.ToString(raw[core.FieldGender])
		p.Gender = &s
	}
	if raw.Has(core.FieldCGPA) {
		f, err := conv.ParseFloat(raw[core.FieldCGPA])
		if err != nil {
			return nil, invalidField(core.FieldCGPA, raw[core.FieldCGPA], err)
		}
		p.CGPA = &f
	}

	ints := []struct {
		field string
		dst   **int
	}{
		{core.FieldBacklogs, &p.Backlogs},
		{core.FieldDSAScore, &p.DSAScore},
		{core.FieldProjects, &p.Projects},
		{core.FieldLeetCodeProblems, &p.LeetCodeProblems},
		{core.FieldCertifications, &p.Certifications},
		{core.FieldCommunicationScore, &p.CommunicationScore},
	}
	for _, f := range ints {
		if !raw.Has(f.field) {
			continue
		}
		n, err := conv.ParseInt(raw[f.field])
		if err != nil {
			return nil, invalidField(f.field, raw[f.field], err)
		}
		*f.dst = &n
	}

	// Internship 只看真值，任何取值都不会报错
	if raw.Has(core.FieldInternship) {
		b := conv.Truthy(raw[core.FieldInternship])
		p.Internship = &b
	}

	return p, nil
}

func invalidField(field string, value any, err error) error {
	return core.WrapDomainError(
		core.ModuleFeature,
		core.ErrorCodeInvalidInput,
		fmt.Sprintf("invalid value for %s: %s", field, conv.Describe(value)),
		err,
	)
}

// Resolve 用默认值填充缺失字段
func Resolve(p *core.StudentProfile) core.ResolvedProfile {
	r := core.ResolvedProfile{
		Branch:             DefaultBranch,
		Gender:             DefaultGender,
		CGPA:               DefaultCGPA,
		Backlogs:           DefaultBacklogs,
		DSAScore:           DefaultDSAScore,
		Projects:           DefaultProjects,
		LeetCodeProblems:   DefaultLeetCodeProblems,
		Certifications:     DefaultCertifications,
		Internship:         DefaultInternship,
		CommunicationScore: DefaultCommunicationScore,
	}
	if p == nil {
		return r
	}
	if p.Branch != nil {
		r.Branch = *p.Branch
	}
	if p.Gender != nil {
		r.Gender = *p.Gender
	}
	if p.CGPA != nil {
		r.CGPA = *p.CGPA
	}
	if p.Backlogs != nil {
		r.Backlogs = *p.Backlogs
	}
	if p.DSAScore != nil {
		r.DSAScore = *p.DSAScore
	}
	if p.Projects != nil {
		r.Projects = *p.Projects
	}
	if p.LeetCodeProblems != nil {
		r.LeetCodeProblems = *p.LeetCodeProblems
	}
	if p.Certifications != nil {
		r.Certifications = *p.Certifications
	}
	if p.Internship != nil {
		r.Internship = *p.Internship
	}
	if p.CommunicationScore != nil {
		r.CommunicationScore = *p.CommunicationScore
	}
	return r
}

// FallbackFunc 在类别值未知、走兜底编码时被调用（用于日志/监控）
type FallbackFunc func(field, value string)

// VectorBuilder 按 FeatureColumns 顺序构建特征向量，并交给 Scaler 标准化
type VectorBuilder struct {
	encoder    *LabelEncoder
	scaler     *Scaler
	onFallback FallbackFunc
}

// VectorBuilderOption 配置 VectorBuilder
type VectorBuilderOption func(*VectorBuilder)

// WithFallbackHook 设置未知类别回调
func WithFallbackHook(fn FallbackFunc) VectorBuilderOption {
	return func(b *VectorBuilder) {
		b.onFallback = fn
	}
}

// NewVectorBuilder 创建向量构建器
func NewVectorBuilder(encoder *LabelEncoder, scaler *Scaler, opts ...VectorBuilderOption) *VectorBuilder {
	b := &VectorBuilder{encoder: encoder, scaler: scaler}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 编码类别字段并按固定顺序组装向量
func (b *VectorBuilder) Build(p core.ResolvedProfile) EncodedVector {
	internship := 0.0
	if p.Internship {
		internship = 1.0
	}
	return EncodedVector{
		float64(b.encode(core.FieldBranch, p.Branch)),
		float64(b.encode(core.FieldGender, p.Gender)),
		p.CGPA,
		float64(p.Backlogs),
		float64(p.DSAScore),
		float64(p.Projects),
		float64(p.LeetCodeProblems),
		float64(p.Certifications),
		internship,
		float64(p.CommunicationScore),
	}
}

// Normalize 用训练时拟合的 Scaler 标准化向量
func (b *VectorBuilder) Normalize(v EncodedVector) ([]float64, error) {
	if b.scaler == nil {
		return nil, fmt.Errorf("vector builder: scaler not set")
	}
	return b.scaler.Transform(v[:])
}

func (b *VectorBuilder) encode(field, value string) int {
	code, fellBack := b.encoder.EncodeWithFallback(field, value)
	if fellBack && b.onFallback != nil {
		b.onFallback(field, value)
	}
	return code
}
