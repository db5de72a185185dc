package errs

import (
	stderr "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeErrorI 业务错误的统一视图：错误码 + 文案 + 细节
type CodeErrorI interface {
	ECode() int
	EMsg() string
	EDetail() string
	error
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func (e *CodeError) ECode() int      { return e.Code }
func (e *CodeError) EMsg() string    { return e.Msg }
func (e *CodeError) EDetail() string { return e.Detail }

// WithDetail 返回带细节的副本，预定义错误本体不被污染
func (e *CodeError) WithDetail(detail string) *CodeError {
	var d string
	if e.Detail == "" {
		d = detail
	} else {
		d = e.Detail + ", " + detail
	}
	return &CodeError{
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: d,
	}
}

// WrapMsg 附加细节并带上调用栈（栈由 pkg/errors 提供）
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return errors.WithStack(e.WithDetail(toString(msg, kv)))
}

func (e *CodeError) Wrap() error {
	return errors.WithStack(e)
}

func (e *CodeError) Is(err error) bool {
	var codeErr *CodeError
	if !stderr.As(err, &codeErr) {
		return false
	}
	return e.Code == codeErr.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// New 无错误码的普通错误（带栈）
func New(msg string, kv ...any) error {
	return errors.New(toString(msg, kv))
}

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, toString(msg, kv))
}

// Unwrap 剥到最里层
func Unwrap(err error) error {
	for err != nil {
		unwrap, ok := err.(interface {
			error
			Unwrap() error
		})
		if !ok {
			break
		}
		next := unwrap.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

func toString(msg string, kv []any) string {
	if len(kv) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			sb.WriteString(fmt.Sprintf(" %v=%v", kv[i], kv[i+1]))
		} else {
			sb.WriteString(fmt.Sprintf(" %v", kv[i]))
		}
	}
	return sb.String()
}
