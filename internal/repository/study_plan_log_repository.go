package repository

import (
	"med_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type StudyPlanLogRepository struct {
	DB *gorm.DB
}

func NewStudyPlanLogRepository(db *gorm.DB) *StudyPlanLogRepository {
	return &StudyPlanLogRepository{DB: db}
}

func (r *StudyPlanLogRepository) Create(log *model.StudyPlanLog) error {
	return r.DB.Create(log).Error
}

func (r *StudyPlanLogRepository) FindByUser(userID uint, limit int) ([]model.StudyPlanLog, error) {
	var logs []model.StudyPlanLog
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *StudyPlanLogRepository) UpdateCompleted(id, userID uint, completed int) error {
	return r.DB.Model(&model.StudyPlanLog{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("completed", completed).Error
}

// DeleteOlderThan 清理过期计划日志，由后台定时任务调用
func (r *StudyPlanLogRepository) DeleteOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	result := r.DB.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.StudyPlanLog{})
	return result.RowsAffected, result.Error
}
