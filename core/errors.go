package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和消息（Message）
//   - Err 保留底层原因，errors.Is / errors.As 可以穿透
//
// 使用场景：
//   - 数据加载：DATA_NOT_FOUND, DATA_FORMAT
//   - 查询：NOT_FOUND（未知电影/用户）
//   - 加载失败后的后续调用：UNAVAILABLE
//   - Store：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "DATA_FORMAT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "engine", "store"）
	Err     error  // 底层原因，可为 nil
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中最外层的 DomainError，如果不存在则返回 nil
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

// WrapDomainError 创建带底层原因的领域错误
func WrapDomainError(module, code string, err error, format string, args ...any) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"      // 资源不存在
	ErrorCodeUnavailable  = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput = "INVALID_INPUT"  // 输入无效
	ErrorCodeDataNotFound = "DATA_NOT_FOUND" // 数据文件缺失/不可读
	ErrorCodeDataFormat   = "DATA_FORMAT"    // 数据行无法解析
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleDataset = "dataset" // 评分数据加载
	ModuleEngine  = "engine"  // 推荐引擎
)

// hasCode 在错误链中查找满足 module/code 的 DomainError。module 为空时不校验模块。
func hasCode(err error, module, code string) bool {
	for err != nil {
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			return false
		}
		if domainErr.Code == code && (module == "" || domainErr.Module == module) {
			return true
		}
		err = domainErr.Err
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, "", ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, "", ErrorCodeInvalidInput)
}

// IsDataNotFound 检查错误是否为数据文件缺失（DataNotFoundError）
func IsDataNotFound(err error) bool {
	return hasCode(err, ModuleDataset, ErrorCodeDataNotFound)
}

// IsDataFormat 检查错误是否为数据格式错误（DataFormatError）
func IsDataFormat(err error) bool {
	return hasCode(err, ModuleDataset, ErrorCodeDataFormat)
}

// IsUnknownItem 检查错误是否为查询了目录中不存在的电影或用户（UnknownItemError）
func IsUnknownItem(err error) bool {
	return hasCode(err, ModuleEngine, ErrorCodeNotFound)
}

// NewUnknownItemError 创建未知条目错误
func NewUnknownItemError(format string, args ...any) *DomainError {
	return NewDomainError(ModuleEngine, ErrorCodeNotFound, fmt.Sprintf(format, args...))
}
