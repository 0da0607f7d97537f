package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message），可选携带底层原因（Err）
//   - 支持错误检查函数（IsXXX），基于 errors.As，可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - 输入错误：INVALID_INPUT（数值字段无法转换）
//   - 模型错误：UNAVAILABLE（模型产物加载失败）
//   - 其他错误：INTERNAL_ERROR（向量构建、分类过程中的意外失败）
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_INPUT", "UNAVAILABLE"）
	Message string // 错误消息（可直接返回给调用方）
	Module  string // 模块名称（如 "feature", "model", "artifact"）
	Err     error  // 底层原因（可选，仅用于日志）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap 返回底层原因
func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用（模型未加载）
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleFeature  = "feature"  // 特征模块
	ModuleModel    = "model"    // 模型模块
	ModuleArtifact = "artifact" // 模型产物模块
	ModuleService  = "service"  // 服务模块
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsInternal 检查错误是否为 INTERNAL_ERROR
func IsInternal(err error) bool {
	return hasCode(err, ErrorCodeInternalError)
}
