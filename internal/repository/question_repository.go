package repository

import (
	"med_edu_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) CreateBatch(questions []model.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.QuizQuestion, error) {
	var question model.QuizQuestion
	err := r.DB.First(&question, id).Error
	return &question, err
}

// FindByTopicID difficulty 为空字符串时不过滤难度
func (r *QuestionRepository) FindByTopicID(topicID uint, difficulty model.DifficultyLevel) ([]model.QuizQuestion, error) {
	query := r.DB.Where("topic_id = ?", topicID)
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var questions []model.QuizQuestion
	err := query.Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByTopicID(topicID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizQuestion{}).Where("topic_id = ?", topicID).Count(&count).Error
	return count, err
}
