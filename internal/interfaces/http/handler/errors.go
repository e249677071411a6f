package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"devplan-ai-api/internal/application/document"
	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/interfaces/http/dto"
	apperrors "devplan-ai-api/pkg/errors"
	"devplan-ai-api/pkg/logger"
)

// toAppError 将领域错误映射为应用错误码
func toAppError(err error) *apperrors.AppError {
	var (
		guardErr *wizard.GuardError
		appErr   *apperrors.AppError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &guardErr):
		return apperrors.Wrap(err, apperrors.CodeStepGuardFailed, "step requirements are not met").WithDetail(guardErr.Reason)
	case errors.Is(err, wizard.ErrOperationInFlight):
		return apperrors.Wrap(err, apperrors.CodeOperationInFlight, "operation already in progress")
	case errors.Is(err, llm.ErrNotConfigured):
		return apperrors.ErrLLMNotConfigured.WithError(err)
	case errors.Is(err, llm.ErrCascadeExhausted):
		return apperrors.ErrLLMCascadeFailed.WithError(err)
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrIllegalTransition):
		return apperrors.Wrap(err, apperrors.CodeIllegalTransition, "action not allowed at current step").WithDetail(err.Error())
	case errors.Is(err, wizard.ErrForcedTransitionDisabled):
		return apperrors.Wrap(err, apperrors.CodeForcedStepForbidden, "forced transition is disabled")
	case errors.Is(err, document.ErrUnsupportedFormat):
		return apperrors.Wrap(err, apperrors.CodeUnsupportedFormat, "unsupported export format").WithDetail(err.Error())
	case errors.Is(err, wizard.ErrUnknownDocumentType), errors.Is(err, wizard.ErrUnknownQuestion):
		return apperrors.ErrInvalidParam.WithError(err).WithDetail(err.Error())
	case errors.Is(err, draft.ErrStorageUnavailable):
		return apperrors.ErrServiceUnavailable.WithError(err)
	case errors.Is(err, draft.ErrMissingUser):
		return apperrors.ErrUnauthorized.WithError(err)
	default:
		return apperrors.ErrInternalError.WithError(err)
	}
}

// respondError 记录并返回错误
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	ctx := c.Request.Context()
	if appErr.HTTPStatus >= 500 {
		logger.Error(ctx, "request failed", err, "path", c.FullPath(), "code", string(appErr.Code))
	} else {
		logger.Debug(ctx, "request rejected", "path", c.FullPath(), "code", string(appErr.Code), "error", err.Error())
	}
	dto.AppError(c, appErr)
}
