package core

// 请求体中的字段名（与训练数据列名一致）。
const (
	FieldBranch             = "Branch"
	FieldGender             = "Gender"
	FieldCGPA               = "CGPA"
	FieldBacklogs           = "Backlogs"
	FieldDSAScore           = "DSA_Score"
	FieldProjects           = "Projects"
	FieldLeetCodeProblems   = "LeetCode_Problems"
	FieldCertifications     = "Certifications"
	FieldInternship         = "Internship"
	FieldCommunicationScore = "Communication_Score"

	// FieldUSN 学号，仅用于在线特征补全，不参与模型输入
	FieldUSN = "USN"
)

// RawProfile 是调用方提交的原始画像（弱类型，字段可缺失）。
// 数值字段可以是数字，也可以是数字字符串；JSON null 视为缺失。
type RawProfile map[string]any

// Has 判断字段是否存在且不为 null
func (p RawProfile) Has(field string) bool {
	if p == nil {
		return false
	}
	v, ok := p[field]
	return ok && v != nil
}

// Clone 返回浅拷贝，补全字段时不修改调用方的 map
func (p RawProfile) Clone() RawProfile {
	out := make(RawProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// StudentProfile 是强类型学生画像。
// 所有字段均为指针：nil 表示调用方未提供，由默认值填充。
type StudentProfile struct {
	Branch             *string
	Gender             *string
	CGPA               *float64
	Backlogs           *int
	DSAScore           *int
	Projects           *int
	LeetCodeProblems   *int
	Certifications     *int
	Internship         *bool
	CommunicationScore *int
}

// ResolvedProfile 是应用默认值之后的画像，字段全部有值。
// 提示生成（TipEngine）与特征编码都基于它，保证两者看到相同的取值。
type ResolvedProfile struct {
	Branch             string
	Gender             string
	CGPA               float64
	Backlogs           int
	DSAScore           int
	Projects           int
	LeetCodeProblems   int
	Certifications     int
	Internship         bool
	CommunicationScore int
}
