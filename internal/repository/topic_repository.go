package repository

import (
	"med_edu_backend/internal/model"

	"gorm.io/gorm"
)

// TopicRepository 处理医学主题的数据访问

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	return &topic, err
}

// FindByIDs 批量查询主题，返回结果不保证与入参同序
func (r *TopicRepository) FindByIDs(ids []uint) ([]model.Topic, error) {
	var topics []model.Topic
	if len(ids) == 0 {
		return topics, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&topics).Error
	return topics, err
}

// List 按身体系统和父主题过滤
func (r *TopicRepository) List(systemName string, parentID *uint) ([]model.Topic, error) {
	query := r.DB.Model(&model.Topic{})

	if systemName != "" {
		query = query.Where("system_name = ?", systemName)
	}
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	}

	var topics []model.Topic
	err := query.Order("system_name, name").Find(&topics).Error
	return topics, err
}

func (r *TopicRepository) Update(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *TopicRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Topic{}, id).Error
}

func (r *TopicRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Topic{}).Count(&count).Error
	return count, err
}
