package model

import (
	"errors"
	"fmt"
)

// 运行阶段错误类型，用 errors.Is 判断
var (
	ErrRetrieval = errors.New("数据获取失败")
	ErrScoring   = errors.New("评分失败")
	ErrLLMCall   = errors.New("大模型调用失败")
	ErrParse     = errors.New("大模型响应解析失败")
	ErrConfig    = errors.New("配置错误")
)

// StageError 携带失败阶段的错误
type StageError struct {
	Kind error
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewStageError 包装 err 为指定阶段的错误
func NewStageError(kind, err error) error {
	return &StageError{Kind: kind, Err: err}
}

// Stagef 按格式构造阶段错误
func Stagef(kind error, format string, args ...any) error {
	return &StageError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// StageName 返回错误对应的阶段名，未知时为空
func StageName(err error) string {
	switch {
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrRetrieval):
		return "retrieval"
	case errors.Is(err, ErrScoring):
		return "scoring"
	case errors.Is(err, ErrLLMCall):
		return "llm"
	case errors.Is(err, ErrParse):
		return "parse"
	}
	return ""
}
