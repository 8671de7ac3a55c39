package model

import "time"

// PriorityLevel 复习优先级标签
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityLow    PriorityLevel = "LOW"
)

// QuestionOption 不含答案的选项
type QuestionOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuizBlockQuestion 学习块内附带的练习题（不暴露正确选项）
type QuizBlockQuestion struct {
	QuestionID uint             `json:"questionId"`
	Stem       string           `json:"stem"`
	Options    []QuestionOption `json:"options"`
}

// StudyBlock 学习计划中针对单个主题的时间块
// 计划生成后不再变更
type StudyBlock struct {
	TopicID           uint                `json:"topicId"`
	Topic             string              `json:"topic"`
	DurationMinutes   int                 `json:"durationMinutes"`
	ReviewMaterial    string              `json:"reviewMaterial"`
	QuizQuestions     []QuizBlockQuestion `json:"quizQuestions"`
	QuizQuestionCount int                 `json:"quizQuestionCount"`
	CurrentMastery    float64             `json:"currentMastery"`
	Reason            string              `json:"reason"`
	Priority          PriorityLevel       `json:"priority"`
}

// StudyPlan 一次计划请求的完整产物，不落库（日志另存 StudyPlanLog）
// 不变式: 各块分钟数之和等于请求时长
type StudyPlan struct {
	UserID                uint         `json:"userId"`
	DurationMinutes       int          `json:"durationMinutes"`
	GeneratedAt           time.Time    `json:"generatedAt"`
	Blocks                []StudyBlock `json:"blocks"`
	TotalTopics           int          `json:"totalTopics"`
	TotalQuestions        int          `json:"totalQuestions"`
	FocusAreas            []string     `json:"focusAreas"`
	AverageCurrentMastery float64      `json:"averageCurrentMastery"`
	Message               string       `json:"message,omitempty"`
}
