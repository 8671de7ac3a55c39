package controller

import (
	"errors"
	"med_edu_backend/internal/service"
	"med_edu_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecommenderController struct {
	RecommenderService *service.RecommenderService
}

func NewRecommenderController(recommenderService *service.RecommenderService) *RecommenderController {
	return &RecommenderController{RecommenderService: recommenderService}
}

// GeneratePlan godoc
// @Summary 生成学习计划
// @Description 按掌握度与复习优先级分配学习时间，可指定重点主题
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PlanRequest true "计划参数"
// @Success 200 {object} util.Response{data=model.StudyPlan} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/study-plan/generate [post]
func (c *RecommenderController) GeneratePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.RecommenderService.GeneratePlan(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "用户不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, plan)
}

// GetPlanHistory godoc
// @Summary 学习计划历史
// @Tags 学习计划
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回条数上限"
// @Success 200 {object} util.Response{data=[]model.StudyPlanLog} "成功"
// @Router /api/study-plan/history [get]
func (c *RecommenderController) GetPlanHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	history, err := c.RecommenderService.PlanHistory(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, history)
}

// PlanCompletionRequest 计划完成状态更新
type PlanCompletionRequest struct {
	Completed int `json:"completed" binding:"min=0,max=2"`
}

// UpdatePlanCompletion godoc
// @Summary 更新计划完成状态
// @Description 0 未开始 1 进行中 2 已完成
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划记录ID"
// @Param   body body PlanCompletionRequest true "完成状态"
// @Success 200 {object} util.Response "成功"
// @Router /api/study-plan/{id}/completion [put]
func (c *RecommenderController) UpdatePlanCompletion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	planID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的计划ID")
		return
	}

	var req PlanCompletionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.RecommenderService.MarkPlanCompleted(uint(planID), claims.UserID, req.Completed); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"updated": true})
}
