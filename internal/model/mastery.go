package model

import "time"

// Mastery 每个 (用户, 主题) 唯一的掌握度记录
// 分数范围 [0.0, 1.0]，只由掌握度更新规则修改
type Mastery struct {
	BaseModel
	UserID         uint       `gorm:"not null;uniqueIndex:uniq_user_topic_mastery" json:"userId"`
	TopicID        uint       `gorm:"not null;uniqueIndex:uniq_user_topic_mastery" json:"topicId"`
	Score          float64    `gorm:"not null;default:0" json:"score"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	ReviewCount    int        `gorm:"not null;default:0" json:"reviewCount"`
}

func (Mastery) TableName() string {
	return "masteries"
}

// StudyPlanLog 已生成学习计划的留痕，仅用于分析
type StudyPlanLog struct {
	BaseModel
	UserID          uint   `gorm:"not null;index" json:"userId"`
	PlanJSON        string `gorm:"type:text;not null" json:"-"`
	DurationMinutes int    `gorm:"not null" json:"durationMinutes"`
	Completed       int    `gorm:"default:0" json:"completed"` // 0 未开始 1 进行中 2 已完成
}

func (StudyPlanLog) TableName() string {
	return "study_plan_logs"
}
