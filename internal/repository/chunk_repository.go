package repository

import (
	"med_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ChunkRepository struct {
	DB *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{DB: db}
}

func (r *ChunkRepository) Create(chunk *model.Chunk) error {
	return r.DB.Create(chunk).Error
}

// CreateBatch 批量写入，导入流水线一次提交一个 PDF 的全部片段
func (r *ChunkRepository) CreateBatch(chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(chunks, 100).Error
}

// FindByTopicID limit <= 0 时返回全部
func (r *ChunkRepository) FindByTopicID(topicID uint, limit int) ([]model.Chunk, error) {
	query := r.DB.Where("topic_id = ?", topicID).Order("page_start, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var chunks []model.Chunk
	err := query.Find(&chunks).Error
	return chunks, err
}

func (r *ChunkRepository) CountByTopicID(topicID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chunk{}).Where("topic_id = ?", topicID).Count(&count).Error
	return count, err
}
