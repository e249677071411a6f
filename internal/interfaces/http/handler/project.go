package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/interfaces/http/dto"
)

// ProjectLister 已提交项目查询
type ProjectLister interface {
	Projects(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectSummary], error)
}

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projects ProjectLister
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *wizard.Controller) *ProjectHandler {
	return &ProjectHandler{projects: svc}
}

// ListProjects 获取当前用户已提交的项目
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	pageReq := dto.BindPage(c)
	result, err := h.projects.Projects(c.Request.Context(), uid, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.ProjectListResponse{Projects: result.Items},
		dto.NewPageMeta(result.Page, result.PageSize, result.Total))
}
