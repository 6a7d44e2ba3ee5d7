// Package apperrors 定义核心业务错误分类。
// HTTP层根据Kind映射状态码，核心代码不关心传输层。
package apperrors

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	// KindValidation 输入格式错误或缺少必填字段
	KindValidation Kind = iota
	// KindNotFound 选举、候选人或用户不存在
	KindNotFound
	// KindConflict 重复投票、选举已关闭、候选人已存在等冲突
	KindConflict
	// KindPrecondition 操作在当前状态下不允许（投票窗口外投票等）
	KindPrecondition
	// KindInternal 存储故障等意外错误
	KindInternal
)

// String 返回类别名称，用于日志
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	default:
		return "internal"
	}
}

// Error 带类别的业务错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf 创建输入校验错误
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf 创建资源不存在错误
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf 创建冲突错误
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Preconditionf 创建前置条件错误
func Preconditionf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

// Internalf 包装底层错误为内部错误
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 返回错误的类别，非业务错误一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于某个类别
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
