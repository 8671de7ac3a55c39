package controller

import (
	"errors"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/service"
	"med_edu_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// QuizGenerateRequest 练习题获取请求
type QuizGenerateRequest struct {
	TopicID    uint   `json:"topicId" binding:"required"`
	Count      int    `json:"count" binding:"omitempty,min=1,max=20"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// GenerateQuiz godoc
// @Summary 获取主题练习题
// @Description 优先从题库抽取，不足时基于教材内容生成
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body QuizGenerateRequest true "出题参数"
// @Success 200 {object} util.Response{data=[]service.QuizQuestionResponse} "成功"
// @Failure 404 {object} util.Response "主题不存在或暂无内容"
// @Router /api/quiz/generate [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	var req QuizGenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Count == 0 {
		req.Count = 5
	}

	questions, err := c.QuizService.GenerateOrFetch(req.TopicID, req.Count, model.DifficultyLevel(req.Difficulty))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTopicNotFound):
			util.NotFound(ctx, "主题不存在")
		case errors.Is(err, util.ErrNoContentForTopic):
			util.NotFound(ctx, "该主题暂无学习内容，无法出题")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, questions)
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 判题、记录答题并更新该主题的掌握度
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AnswerSubmit true "答案"
// @Success 200 {object} util.Response{data=service.AnswerFeedback} "判题结果"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/quiz/answer [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnswerSubmit
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.QuizService.SubmitAnswer(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, "题目不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, feedback)
}

// QuestionCreateRequest 人工录题请求
type QuestionCreateRequest struct {
	TopicID       uint   `json:"topicId" binding:"required"`
	Stem          string `json:"stem" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC" binding:"required"`
	OptionD       string `json:"optionD" binding:"required"`
	CorrectOption string `json:"correctOption" binding:"required,oneof=A B C D a b c d"`
	Explanation   string `json:"explanation"`
	Difficulty    string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// CreateQuestion godoc
// @Summary 录入题目（管理端）
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body QuestionCreateRequest true "题目内容"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	var req QuestionCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question := &model.QuizQuestion{
		TopicID:       req.TopicID,
		Stem:          req.Stem,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
		Explanation:   req.Explanation,
		Difficulty:    model.DifficultyLevel(req.Difficulty),
	}

	if err := c.QuizService.CreateQuestion(question); err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.BadRequest(ctx, "主题不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": question.ID})
}

// ListQuestions godoc
// @Summary 主题题目列表（管理端）
// @Tags 练习
// @Produce  json
// @Security BearerAuth
// @Param   topicId query int true "主题ID"
// @Param   difficulty query string false "难度过滤"
// @Success 200 {object} util.Response{data=[]model.QuizQuestion} "成功"
// @Router /api/admin/questions [get]
func (c *QuizController) ListQuestions(ctx *gin.Context) {
	topicID, err := strconv.ParseUint(ctx.Query("topicId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "topicId 必须是正整数")
		return
	}

	questions, err := c.QuizService.QuestionRepo.FindByTopicID(uint(topicID), model.DifficultyLevel(ctx.Query("difficulty")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}
