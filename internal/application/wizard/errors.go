package wizard

import (
	"errors"
	"fmt"

	"devplan-ai-api/internal/domain/entity"
)

var (
	// ErrIllegalTransition 转换表中不存在的跳转
	ErrIllegalTransition = errors.New("illegal wizard transition")
	// ErrOperationInFlight 同一生成操作正在进行
	ErrOperationInFlight = errors.New("operation already in flight")
	// ErrForcedTransitionDisabled 未开启强制跳步
	ErrForcedTransitionDisabled = errors.New("forced transition is disabled")
	// ErrUnknownDocumentType 未知或未选择的文档类型
	ErrUnknownDocumentType = errors.New("unknown document type")
	// ErrUnknownQuestion 回答了不存在的澄清问题
	ErrUnknownQuestion = errors.New("unknown clarification question")
	// ErrWrongStep 当前步骤不允许该操作
	ErrWrongStep = errors.New("action not allowed at current step")
)

// GuardError 前进条件不满足，草稿未被修改
type GuardError struct {
	From   entity.Step
	To     entity.Step
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s: %s", e.From, e.To, e.Reason)
}

// StepError 当前步骤不允许该操作
type StepError struct {
	Action  string
	Current entity.Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s is not allowed at step %s", e.Action, e.Current)
}

func (e *StepError) Unwrap() error {
	return ErrWrongStep
}
