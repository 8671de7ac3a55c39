package repository

import (
	"med_edu_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Create(answer *model.QuizAnswer) error {
	return r.DB.Create(answer).Error
}

// FindByUserAndTopic 查询用户在某主题下的全部答题记录（联表到题目）
func (r *AnswerRepository) FindByUserAndTopic(userID, topicID uint) ([]model.QuizAnswer, error) {
	var answers []model.QuizAnswer
	err := r.DB.
		Joins("JOIN quiz_questions ON quiz_questions.id = quiz_answers.question_id").
		Where("quiz_answers.user_id = ? AND quiz_questions.topic_id = ?", userID, topicID).
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) CountByUser(userID uint) (total int64, correct int64, err error) {
	err = r.DB.Model(&model.QuizAnswer{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.DB.Model(&model.QuizAnswer{}).Where("user_id = ? AND correct = ?", userID, true).Count(&correct).Error
	return total, correct, err
}
