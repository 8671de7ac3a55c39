package repository

import (
	"med_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MasteryRepository 处理掌握度记录的数据访问
// (user_id, topic_id) 唯一约束由模型上的联合索引保证

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

func (r *MasteryRepository) Create(mastery *model.Mastery) error {
	return r.DB.Create(mastery).Error
}

func (r *MasteryRepository) Update(mastery *model.Mastery) error {
	return r.DB.Save(mastery).Error
}

func (r *MasteryRepository) FindByUserAndTopic(userID, topicID uint) (*model.Mastery, error) {
	var mastery model.Mastery
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&mastery).Error
	return &mastery, err
}

// FindByUserAndTopicForUpdate 行级锁读取，调用方必须处于事务中
// 两次并发的同一 (user, topic) 答题提交在此串行化
func (r *MasteryRepository) FindByUserAndTopicForUpdate(tx *gorm.DB, userID, topicID uint) (*model.Mastery, error) {
	var mastery model.Mastery
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&mastery).Error
	return &mastery, err
}

func (r *MasteryRepository) FindByUser(userID uint) ([]model.Mastery, error) {
	var masteries []model.Mastery
	err := r.DB.Where("user_id = ?", userID).Find(&masteries).Error
	return masteries, err
}
