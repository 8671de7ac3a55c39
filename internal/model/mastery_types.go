package model

import "time"

// MasteryScore 带主题信息的掌握度条目，用于看板展示
type MasteryScore struct {
	TopicID        uint       `json:"topicId"`
	TopicName      string     `json:"topicName"`
	SystemName     string     `json:"systemName"`
	Score          float64    `json:"score"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	ReviewCount    int        `json:"reviewCount"`
}

// SystemAggregate 按身体系统的聚合统计
type SystemAggregate struct {
	SystemName     string  `json:"systemName"`
	Count          int     `json:"count"`
	AverageMastery float64 `json:"averageMastery"`
}

// MasteryDashboard 用户掌握度总览
type MasteryDashboard struct {
	UserID         uint              `json:"userId"`
	OverallMastery float64           `json:"overallMastery"`
	TotalTopics    int               `json:"totalTopics"`
	StrongTopics   []MasteryScore    `json:"strongTopics"`
	WeakTopics     []MasteryScore    `json:"weakTopics"`
	RecentActivity []MasteryScore    `json:"recentActivity"`
	BySystem       []SystemAggregate `json:"bySystem"`
}

// TopicMasteryDetail 单主题掌握度详情，附答题准确率
type TopicMasteryDetail struct {
	TopicID                uint       `json:"topicId"`
	TopicName              string     `json:"topicName"`
	Score                  float64    `json:"score"`
	LastReviewedAt         *time.Time `json:"lastReviewedAt"`
	ReviewCount            int        `json:"reviewCount"`
	TotalQuestionsAnswered int        `json:"totalQuestionsAnswered"`
	CorrectAnswers         int        `json:"correctAnswers"`
	Accuracy               float64    `json:"accuracy"`
	NeedsReview            bool       `json:"needsReview"`
	RecommendedAction      string     `json:"recommendedAction"`
}
