package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"devplan-ai-api/internal/application/document"
	"devplan-ai-api/internal/application/recommend"
	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/interfaces/http/dto"
	"devplan-ai-api/internal/interfaces/http/middleware"
	apperrors "devplan-ai-api/pkg/errors"
)

// WizardService 向导应用服务
type WizardService interface {
	State(ctx context.Context, userID string) (*wizard.View, error)
	Edit(ctx context.Context, userID string, e wizard.Edit) (*wizard.View, error)
	Reset(ctx context.Context, userID string) (*wizard.View, error)
	Advance(ctx context.Context, userID string) (*wizard.View, error)
	Back(ctx context.Context, userID string) (*wizard.View, error)
	ForceStep(ctx context.Context, userID string, target entity.Step) (*wizard.View, error)
	RegenerateClarification(ctx context.Context, userID string) (*wizard.View, error)
	RegenerateFeatures(ctx context.Context, userID string) (*wizard.View, error)
	RegenerateTechStack(ctx context.Context, userID string) (*wizard.View, error)
	RetryDocument(ctx context.Context, userID, docType string) (*wizard.View, error)
	Recommend(ctx context.Context, userID string, category recommend.Category) ([]entity.Recommendation, error)
	ApplyRecommendations(ctx context.Context, userID string, category recommend.Category, items []string) (*wizard.View, error)
	Submit(ctx context.Context, userID string) (string, error)
}

// WizardHandler 项目规划向导处理器
type WizardHandler struct {
	svc       WizardService
	assembler *document.Assembler
}

// NewWizardHandler 创建向导处理器
func NewWizardHandler(svc *wizard.Controller, assembler *document.Assembler) *WizardHandler {
	return &WizardHandler{svc: svc, assembler: assembler}
}

// userID 读取当前用户，缺失时直接返回 401
func userID(c *gin.Context) (string, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		dto.AppError(c, apperrors.ErrUnauthorized)
	}
	return id, ok
}

// respondView 统一处理返回草稿视图的操作
func (h *WizardHandler) respondView(c *gin.Context, fn func(ctx context.Context, uid string) (*wizard.View, error)) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := fn(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, view)
}

// GetWizard 获取草稿与完成度
// @Summary 获取向导状态
// @Tags Wizard
// @Produce json
// @Success 200 {object} dto.Response[wizard.View]
// @Router /v1/wizard [get]
func (h *WizardHandler) GetWizard(c *gin.Context) {
	h.respondView(c, h.svc.State)
}

// GetStatus 仅返回完成度
// @Summary 获取完成度
// @Tags Wizard
// @Produce json
// @Router /v1/wizard/status [get]
func (h *WizardHandler) GetStatus(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.svc.State(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, gin.H{
		"step":     view.Draft.Step,
		"status":   view.Status,
		"inFlight": view.InFlight,
	})
}

// UpdateDraft 部分更新草稿
// @Summary 更新草稿
// @Tags Wizard
// @Accept json
// @Produce json
// @Param body body dto.UpdateDraftRequest true "草稿字段"
// @Router /v1/wizard/draft [patch]
func (h *WizardHandler) UpdateDraft(c *gin.Context) {
	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	h.respondView(c, func(ctx context.Context, uid string) (*wizard.View, error) {
		return h.svc.Edit(ctx, uid, req.ToEdit())
	})
}

// Reset 重置草稿
// @Router /v1/wizard/reset [post]
func (h *WizardHandler) Reset(c *gin.Context) {
	h.respondView(c, h.svc.Reset)
}

// Advance 前进到下一步
// @Summary 前进
// @Description 条件不满足返回 422；AI 未配置返回 503；同一操作进行中返回 409
// @Tags Wizard
// @Router /v1/wizard/advance [post]
func (h *WizardHandler) Advance(c *gin.Context) {
	h.respondView(c, h.svc.Advance)
}

// Back 返回上一步
// @Router /v1/wizard/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	h.respondView(c, h.svc.Back)
}

// ForceStep 强制跳转（仅调试环境开启）
// @Router /v1/wizard/force [post]
func (h *WizardHandler) ForceStep(c *gin.Context) {
	var req dto.ForceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	target := entity.Step(strings.TrimSpace(req.Step))
	h.respondView(c, func(ctx context.Context, uid string) (*wizard.View, error) {
		return h.svc.ForceStep(ctx, uid, target)
	})
}

// RegenerateClarification 重新生成澄清问题
// @Router /v1/wizard/clarification/regenerate [post]
func (h *WizardHandler) RegenerateClarification(c *gin.Context) {
	h.respondView(c, h.svc.RegenerateClarification)
}

// RegenerateFeatures 重新生成功能列表
// @Router /v1/wizard/features/regenerate [post]
func (h *WizardHandler) RegenerateFeatures(c *gin.Context) {
	h.respondView(c, h.svc.RegenerateFeatures)
}

// RegenerateTechStack 重新生成技术栈建议
// @Router /v1/wizard/tech-stack/regenerate [post]
func (h *WizardHandler) RegenerateTechStack(c *gin.Context) {
	h.respondView(c, h.svc.RegenerateTechStack)
}

// RetryDocument 重新生成单个文档，结果异步写入草稿
// @Router /v1/wizard/documents/{doc_type}/retry [post]
func (h *WizardHandler) RetryDocument(c *gin.Context) {
	docType := c.Param("doc_type")
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.svc.RetryDocument(c.Request.Context(), uid, docType)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Accepted(c, view)
}

// GetRecommendations 获取推荐
// @Param category query string true "models | tools | techstack"
// @Router /v1/wizard/recommendations [get]
func (h *WizardHandler) GetRecommendations(c *gin.Context) {
	category, err := recommend.ParseCategory(c.Query("category"))
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	uid, ok := userID(c)
	if !ok {
		return
	}
	items, err := h.svc.Recommend(c.Request.Context(), uid, category)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.RecommendationsResponse{Category: string(category), Items: items})
}

// ApplyRecommendations 采纳推荐
// @Router /v1/wizard/recommendations/apply [post]
func (h *WizardHandler) ApplyRecommendations(c *gin.Context) {
	var req dto.ApplyRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	category, err := recommend.ParseCategory(req.Category)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	h.respondView(c, func(ctx context.Context, uid string) (*wizard.View, error) {
		return h.svc.ApplyRecommendations(ctx, uid, category, req.Items)
	})
}

// Export 导出草稿与已生成文档
// @Param format query string false "markdown | html | json | yaml"
// @Router /v1/wizard/export [get]
func (h *WizardHandler) Export(c *gin.Context) {
	format, err := document.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.svc.State(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	body, contentType, err := h.assembler.Render(view.Draft, format)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("devplan-%s.%s", time.Now().UTC().Format("20060102"), format.Extension())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// Submit 提交草稿为项目
// @Router /v1/wizard/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	projectID, err := h.svc.Submit(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.SubmitResponse{ProjectID: projectID})
}
