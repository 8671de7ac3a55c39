package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"med_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 计划历史默认返回条数
const planHistoryLimit = 20

// PlanRequest 学习计划生成请求
type PlanRequest struct {
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=20,max=480"`
	FocusTopicIDs   []uint `json:"focusTopicIds"`
	WithQuestions   bool   `json:"withQuestions"`
}

// RecommenderService 组装学习计划：规划时间块后填充复习材料与练习题
type RecommenderService struct {
	Planner     *StudyPlanner
	Content     *ContentService
	Quiz        *QuizService
	UserRepo    *repository.UserRepository
	PlanLogRepo *repository.StudyPlanLogRepository
}

func NewRecommenderService(
	planner *StudyPlanner,
	content *ContentService,
	quiz *QuizService,
	userRepo *repository.UserRepository,
	planLogRepo *repository.StudyPlanLogRepository,
) *RecommenderService {
	return &RecommenderService{
		Planner:     planner,
		Content:     content,
		Quiz:        quiz,
		UserRepo:    userRepo,
		PlanLogRepo: planLogRepo,
	}
}

// GeneratePlan 生成计划并补全每个学习块的内容
// 材料或练习题获取失败不阻断计划，降级为占位文案
func (s *RecommenderService) GeneratePlan(ctx context.Context, userID uint, req PlanRequest) (*model.StudyPlan, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	plan, err := s.Planner.GeneratePlan(userID, req.DurationMinutes, req.FocusTopicIDs)
	if err != nil {
		return nil, err
	}

	for i := range plan.Blocks {
		s.enrichBlock(ctx, &plan.Blocks[i], req.WithQuestions)
		plan.TotalQuestions += plan.Blocks[i].QuizQuestionCount
	}

	s.logPlan(userID, plan)
	monitoring.PlansGenerated.Inc()

	logger.Log.Info("Study plan generated",
		zap.Uint("userID", userID),
		zap.Int("durationMinutes", plan.DurationMinutes),
		zap.Int("topics", plan.TotalTopics))
	return plan, nil
}

func (s *RecommenderService) enrichBlock(ctx context.Context, block *model.StudyBlock, withQuestions bool) {
	summary, err := s.Content.GetTopicSummary(ctx, block.TopicID, false)
	if err != nil {
		logger.Log.Warn("Failed to fetch review material for plan block",
			zap.Uint("topicID", block.TopicID), zap.Error(err))
		block.ReviewMaterial = fmt.Sprintf("Study materials for %s", block.Topic)
	} else {
		block.ReviewMaterial = summary.Summary
	}

	if !withQuestions || block.QuizQuestionCount == 0 {
		return
	}

	questions, err := s.Quiz.GenerateOrFetch(block.TopicID, block.QuizQuestionCount, "")
	if err != nil {
		logger.Log.Warn("Failed to attach quiz questions to plan block",
			zap.Uint("topicID", block.TopicID), zap.Error(err))
		return
	}
	for _, q := range questions {
		block.QuizQuestions = append(block.QuizQuestions, model.QuizBlockQuestion{
			QuestionID: q.ID,
			Stem:       q.Stem,
			Options:    q.Options,
		})
	}
}

// logPlan 落库失败不影响计划返回
func (s *RecommenderService) logPlan(userID uint, plan *model.StudyPlan) {
	payload, err := json.Marshal(plan)
	if err != nil {
		logger.Log.Error("Failed to serialize study plan", zap.Error(err))
		return
	}
	entry := &model.StudyPlanLog{
		UserID:          userID,
		PlanJSON:        string(payload),
		DurationMinutes: plan.DurationMinutes,
	}
	if err := s.PlanLogRepo.Create(entry); err != nil {
		logger.Log.Error("Failed to persist study plan log",
			zap.Uint("userID", userID), zap.Error(err))
	}
}

// PlanHistory 最近的计划记录
func (s *RecommenderService) PlanHistory(userID uint, limit int) ([]model.StudyPlanLog, error) {
	if limit <= 0 || limit > 100 {
		limit = planHistoryLimit
	}
	return s.PlanLogRepo.FindByUser(userID, limit)
}

// MarkPlanCompleted completed: 0 未开始 1 进行中 2 已完成
func (s *RecommenderService) MarkPlanCompleted(planID, userID uint, completed int) error {
	if completed < 0 || completed > 2 {
		return fmt.Errorf("invalid completion state %d", completed)
	}
	return s.PlanLogRepo.UpdateCompleted(planID, userID, completed)
}
