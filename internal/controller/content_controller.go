package controller

import (
	"errors"
	"fmt"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/service"
	"med_edu_backend/internal/util"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
	StorageService *service.StorageService
	Cfg            *config.Config
}

func NewContentController(contentService *service.ContentService, storageService *service.StorageService, cfg *config.Config) *ContentController {
	return &ContentController{
		ContentService: contentService,
		StorageService: storageService,
		Cfg:            cfg,
	}
}

// TopicCreateRequest 创建主题请求
type TopicCreateRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=200"`
	SystemName      string `json:"systemName" binding:"omitempty,max=100"`
	ParentID        *uint  `json:"parentId"`
	SourceReference string `json:"sourceReference" binding:"omitempty,max=255"`
	Description     string `json:"description"`
}

// CreateTopic godoc
// @Summary 创建主题（管理端）
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body TopicCreateRequest true "主题信息"
// @Success 201 {object} util.Response{data=model.Topic} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/topics [post]
func (c *ContentController) CreateTopic(ctx *gin.Context) {
	var req TopicCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic := &model.Topic{
		Name:            req.Name,
		SystemName:      req.SystemName,
		ParentID:        req.ParentID,
		SourceReference: req.SourceReference,
		Description:     req.Description,
	}

	if err := c.ContentService.CreateTopic(topic); err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.BadRequest(ctx, "父主题不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, topic)
}

// ListTopics godoc
// @Summary 主题列表
// @Description 可按器官系统或父主题过滤
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   system query string false "器官系统名称"
// @Param   parentId query int false "父主题ID"
// @Success 200 {object} util.Response{data=[]model.Topic} "成功"
// @Router /api/topics [get]
func (c *ContentController) ListTopics(ctx *gin.Context) {
	systemName := ctx.Query("system")

	var parentID *uint
	if raw := ctx.Query("parentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "parentId 必须是正整数")
			return
		}
		v := uint(id)
		parentID = &v
	}

	topics, err := c.ContentService.ListTopics(systemName, parentID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, topics)
}

// GetTopic godoc
// @Summary 主题详情
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Success 200 {object} util.Response{data=model.Topic} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{id} [get]
func (c *ContentController) GetTopic(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的主题ID")
		return
	}

	topic, err := c.ContentService.GetTopic(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx, "主题不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, topic)
}

// GetTopicSummary godoc
// @Summary 主题学习总结
// @Description 基于已导入教材片段生成带引用的总结，结果缓存一小时
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "主题ID"
// @Param   highYield query bool false "是否包含高频考点与易错点"
// @Success 200 {object} util.Response{data=service.TopicSummary} "成功"
// @Failure 404 {object} util.Response "主题不存在或暂无内容"
// @Router /api/topics/{id}/summary [get]
func (c *ContentController) GetTopicSummary(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的主题ID")
		return
	}

	includeHighYield := ctx.Query("highYield") == "true"

	summary, err := c.ContentService.GetTopicSummary(ctx.Request.Context(), uint(id), includeHighYield)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTopicNotFound):
			util.NotFound(ctx, "主题不存在")
		case errors.Is(err, util.ErrNoContentForTopic):
			util.NotFound(ctx, "该主题暂无已导入的学习内容")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, summary)
}

// SearchContent godoc
// @Summary 语义搜索教材内容
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   q query string true "查询语句"
// @Param   limit query int false "返回条数上限"
// @Success 200 {object} util.Response{data=service.SearchResponse} "成功"
// @Router /api/content/search [get]
func (c *ContentController) SearchContent(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		util.BadRequest(ctx, "缺少查询参数 q")
		return
	}

	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	result, err := c.ContentService.SearchContent(ctx.Request.Context(), query, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// UploadPDF godoc
// @Summary 上传教材 PDF 并启动导入任务
// @Description 文件先存入对象存储，后台异步抽取、切分并生成向量
// @Tags 内容
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "PDF 文件"
// @Param   topicId formData int true "归属主题ID"
// @Success 202 {object} util.Response{data=model.IngestionJob} "任务已创建"
// @Failure 400 {object} util.Response "文件或参数不合法"
// @Router /api/content/upload [post]
func (c *ContentController) UploadPDF(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.ParseUint(ctx.PostForm("topicId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "topicId 必须是正整数")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !util.IsAllowedUploadExt(ext) {
		util.BadRequest(ctx, fmt.Sprintf("不支持的文件类型: %s", ext))
		return
	}

	maxBytes := int64(c.Cfg.Ingestion.MaxUploadSizeMB) << 20
	if fileHeader.Size > maxBytes {
		util.BadRequest(ctx, fmt.Sprintf("文件超过大小限制 %dMB", c.Cfg.Ingestion.MaxUploadSizeMB))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	storedName := fmt.Sprintf("%s_%s", model.GenerateUUID()[:8], filepath.Base(fileHeader.Filename))
	if _, err := c.StorageService.SavePDF(ctx.Request.Context(), storedName, file, fileHeader.Size); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	job, err := c.ContentService.StartIngestion(claims.UserID, uint(topicID), storedName)
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx, "主题不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Accepted(ctx, job)
}

// GetIngestionStatus godoc
// @Summary 查询导入任务状态
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   jobId path string true "任务ID"
// @Success 200 {object} util.Response{data=model.IngestionJob} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/content/ingestion/{jobId} [get]
func (c *ContentController) GetIngestionStatus(ctx *gin.Context) {
	jobID := ctx.Param("jobId")

	job, err := c.ContentService.GetIngestionStatus(jobID)
	if err != nil {
		if errors.Is(err, util.ErrJobNotFound) {
			util.NotFound(ctx, "任务不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, job)
}
