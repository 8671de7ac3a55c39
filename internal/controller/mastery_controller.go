package controller

import (
	"errors"
	"med_edu_backend/internal/service"
	"med_edu_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	MasteryService *service.MasteryService
}

func NewMasteryController(masteryService *service.MasteryService) *MasteryController {
	return &MasteryController{MasteryService: masteryService}
}

// GetDashboard godoc
// @Summary 掌握度总览
// @Description 全部主题的掌握度、强弱项与按器官系统的聚合
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.MasteryDashboard} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/mastery/dashboard [get]
func (c *MasteryController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.MasteryService.Dashboard(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "用户不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, dashboard)
}

// GetTopicDetail godoc
// @Summary 单主题掌握度详情
// @Description 掌握度、答题正确率与复习建议
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Success 200 {object} util.Response{data=model.TopicMasteryDetail} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/mastery/topics/{id} [get]
func (c *MasteryController) GetTopicDetail(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的主题ID")
		return
	}

	detail, err := c.MasteryService.TopicDetail(claims.UserID, uint(topicID))
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx, "主题不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// GetWeakTopics godoc
// @Summary 薄弱主题列表
// @Description 按复习优先级降序排列的待复习主题
// @Tags 掌握度
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回条数上限"
// @Success 200 {object} util.Response{data=[]model.Mastery} "成功"
// @Router /api/mastery/weak [get]
func (c *MasteryController) GetWeakTopics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	weak, err := c.MasteryService.WeakTopicsForReview(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, weak)
}
