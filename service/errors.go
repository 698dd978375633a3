package service

import (
	"errors"
	"fmt"
)

// 流水线错误分类：配置错误可由调用方修正，其余均为本次调用的致命错误。
// 流水线内部不做重试，重试策略由上层任务队列负责。
var (
	ErrUnknownPreset     = errors.New("unknown background preset")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrDimensionMismatch = errors.New("mask dimensions do not match subject")
	ErrInvalidFrame      = errors.New("invalid frame")
)

// StageError 携带出错阶段名的流水线错误
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// IsConfigError 判断是否为调用方可修正的配置错误（如预设名不存在）
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownPreset)
}
