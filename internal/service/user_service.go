package service

import (
	"errors"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileUpdate 可由用户本人修改的字段
type ProfileUpdate struct {
	Name     string `json:"name" binding:"omitempty,min=2,max=50"`
	ExamYear int    `json:"examYear" binding:"omitempty,min=2024,max=2040"`
	Language string `json:"language" binding:"omitempty,oneof=en zh"`
}

// UserStats 个人练习统计
type UserStats struct {
	TotalAnswers   int64   `json:"totalAnswers"`
	CorrectAnswers int64   `json:"correctAnswers"`
	Accuracy       float64 `json:"accuracy"`
	PlansGenerated int     `json:"plansGenerated"`
}

type UserService struct {
	UserRepo    *repository.UserRepository
	AnswerRepo  *repository.AnswerRepository
	PlanLogRepo *repository.StudyPlanLogRepository
}

func NewUserService(userRepo *repository.UserRepository, answerRepo *repository.AnswerRepository, planLogRepo *repository.StudyPlanLogRepository) *UserService {
	return &UserService{UserRepo: userRepo, AnswerRepo: answerRepo, PlanLogRepo: planLogRepo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.ExamYear != 0 {
		user.ExamYear = update.ExamYear
	}
	if update.Language != "" {
		user.Language = update.Language
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Log.Info("Profile updated", zap.Uint("userID", userID))
	return user, nil
}

// Stats 答题量、正确率与生成过的计划数
func (s *UserService) Stats(userID uint) (*UserStats, error) {
	if _, err := s.GetProfile(userID); err != nil {
		return nil, err
	}

	total, correct, err := s.AnswerRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	plans, err := s.PlanLogRepo.FindByUser(userID, 100)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		TotalAnswers:   total,
		CorrectAnswers: correct,
		PlansGenerated: len(plans),
	}
	if total > 0 {
		stats.Accuracy = util.Round3(float64(correct) / float64(total))
	}
	return stats, nil
}
