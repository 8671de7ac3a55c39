package repository

import (
	"med_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type IngestionJobRepository struct {
	DB *gorm.DB
}

func NewIngestionJobRepository(db *gorm.DB) *IngestionJobRepository {
	return &IngestionJobRepository{DB: db}
}

func (r *IngestionJobRepository) Create(job *model.IngestionJob) error {
	return r.DB.Create(job).Error
}

func (r *IngestionJobRepository) FindByJobID(jobID string) (*model.IngestionJob, error) {
	var job model.IngestionJob
	err := r.DB.Where("job_id = ?", jobID).First(&job).Error
	return &job, err
}

func (r *IngestionJobRepository) MarkRunning(jobID string) error {
	return r.DB.Model(&model.IngestionJob{}).
		Where("job_id = ?", jobID).
		Update("status", model.IngestionRunning).Error
}

func (r *IngestionJobRepository) MarkDone(jobID string, chunkCount int) error {
	now := time.Now()
	return r.DB.Model(&model.IngestionJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      model.IngestionDone,
			"chunk_count": chunkCount,
			"finished_at": &now,
		}).Error
}

func (r *IngestionJobRepository) MarkError(jobID string, message string) error {
	now := time.Now()
	return r.DB.Model(&model.IngestionJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        model.IngestionError,
			"error_message": message,
			"finished_at":   &now,
		}).Error
}
