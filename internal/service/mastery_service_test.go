package service

import (
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMasteryConfig() config.MasteryConfig {
	return config.MasteryConfig{
		InitialScore:         0.0,
		CorrectIncrement:     0.1,
		IncorrectDecrement:   0.05,
		WeakThreshold:        0.7,
		SpacedRepetitionDays: 2,
	}
}

func newTestMasteryService() *MasteryService {
	return &MasteryService{Cfg: testMasteryConfig()}
}

// daysAgo 返回 n 天前的时间指针，额外加一小时防止整除边界抖动
func daysAgo(n int) *time.Time {
	t := time.Now().Add(-time.Duration(n)*24*time.Hour - time.Hour)
	return &t
}

func TestApplyQuizResult(t *testing.T) {
	svc := newTestMasteryService()

	tests := []struct {
		name    string
		score   float64
		correct bool
		want    float64
	}{
		{"correct from zero", 0.0, true, 0.1},
		{"correct mid range", 0.5, true, 0.55},
		{"correct near ceiling gives diminishing gain", 0.95, true, 0.955},
		{"correct at ceiling stays capped", 1.0, true, 1.0},
		{"incorrect fixed penalty", 0.5, false, 0.45},
		{"incorrect clamps at floor", 0.05, false, 0.0},
		{"incorrect at floor stays at floor", 0.0, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Mastery{Score: tt.score}
			now := time.Now()

			svc.ApplyQuizResult(m, tt.correct, now)

			assert.InDelta(t, tt.want, m.Score, 1e-9)
			require.NotNil(t, m.LastReviewedAt)
			assert.Equal(t, now, *m.LastReviewedAt)
			assert.Equal(t, 1, m.ReviewCount)
		})
	}
}

func TestApplyQuizResultMonotonicity(t *testing.T) {
	svc := newTestMasteryService()
	m := &model.Mastery{Score: 0.0}

	prev := m.Score
	for i := 0; i < 200; i++ {
		svc.ApplyQuizResult(m, true, time.Now())
		assert.GreaterOrEqual(t, m.Score, prev)
		assert.LessOrEqual(t, m.Score, 1.0)
		prev = m.Score
	}
	// 连续答对后分数应逼近满分
	assert.Greater(t, m.Score, 0.99)

	for i := 0; i < 100; i++ {
		svc.ApplyQuizResult(m, false, time.Now())
		assert.GreaterOrEqual(t, m.Score, 0.0)
	}
	assert.InDelta(t, 0.0, m.Score, 1e-9)
}

func TestClassifyPriority(t *testing.T) {
	svc := newTestMasteryService()

	tests := []struct {
		name         string
		score        float64
		lastReviewed *time.Time
		want         model.PriorityLevel
	}{
		{"weak and overdue", 0.5, daysAgo(3), model.PriorityHigh},
		{"weak but recently reviewed", 0.5, daysAgo(1), model.PriorityMedium},
		{"weak exactly at gap threshold", 0.5, daysAgo(2), model.PriorityMedium},
		{"weak never reviewed", 0.5, nil, model.PriorityHigh},
		{"medium mastery long gap", 0.75, daysAgo(8), model.PriorityMedium},
		{"medium mastery short gap", 0.75, daysAgo(2), model.PriorityMedium},
		{"medium mastery never reviewed", 0.75, nil, model.PriorityMedium},
		{"strong regardless of gap", 0.9, daysAgo(30), model.PriorityLow},
		{"strong never reviewed", 0.9, nil, model.PriorityLow},
		{"exactly at strong threshold", 0.85, daysAgo(1), model.PriorityLow},
		{"exactly at weak threshold overdue", 0.7, daysAgo(10), model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Mastery{Score: tt.score, LastReviewedAt: tt.lastReviewed}
			assert.Equal(t, tt.want, svc.ClassifyPriority(m))
		})
	}
}

func TestPriorityScore(t *testing.T) {
	svc := newTestMasteryService()

	tests := []struct {
		name         string
		score        float64
		lastReviewed *time.Time
		want         float64
	}{
		{"never reviewed gets full recency bonus", 0.4, nil, 110.0},
		{"recent review small bonus", 0.4, daysAgo(3), 75.0},
		{"long gap bonus capped", 0.4, daysAgo(20), 110.0},
		{"perfect mastery never reviewed", 1.0, nil, 50.0},
		{"zero mastery reviewed today", 0.0, daysAgo(0), 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Mastery{Score: tt.score, LastReviewedAt: tt.lastReviewed}
			assert.InDelta(t, tt.want, svc.PriorityScore(m), 1e-9)
		})
	}
}

func TestPriorityScoreOrdersWeakestFirst(t *testing.T) {
	svc := newTestMasteryService()

	weakStale := &model.Mastery{TopicID: 1, Score: 0.2, LastReviewedAt: daysAgo(5)}
	weakFresh := &model.Mastery{TopicID: 2, Score: 0.2, LastReviewedAt: daysAgo(0)}
	strongStale := &model.Mastery{TopicID: 3, Score: 0.9, LastReviewedAt: daysAgo(5)}

	assert.Greater(t, svc.PriorityScore(weakStale), svc.PriorityScore(weakFresh))
	assert.Greater(t, svc.PriorityScore(weakFresh), svc.PriorityScore(strongStale))
}

func TestAggregateBySystem(t *testing.T) {
	scores := []model.MasteryScore{
		{TopicID: 1, SystemName: "Cardiovascular", Score: 0.8},
		{TopicID: 2, SystemName: "Respiratory", Score: 0.4},
		{TopicID: 3, SystemName: "Cardiovascular", Score: 0.6},
		{TopicID: 4, SystemName: "", Score: 0.5},
	}

	result := aggregateBySystem(scores)

	require.Len(t, result, 3)
	// 保持首次出现的顺序
	assert.Equal(t, "Cardiovascular", result[0].SystemName)
	assert.Equal(t, 2, result[0].Count)
	assert.InDelta(t, 0.7, result[0].AverageMastery, 1e-9)

	assert.Equal(t, "Respiratory", result[1].SystemName)
	assert.Equal(t, 1, result[1].Count)

	// 缺系统名的归入 General
	assert.Equal(t, "General", result[2].SystemName)
	assert.InDelta(t, 0.5, result[2].AverageMastery, 1e-9)
}

func TestTopN(t *testing.T) {
	assert.Empty(t, topN(nil, 10))

	scores := []model.MasteryScore{{TopicID: 1}, {TopicID: 2}, {TopicID: 3}}
	assert.Len(t, topN(scores, 2), 2)
	assert.Len(t, topN(scores, 10), 3)
}

func TestRankForReviewTieBreaksByTopicID(t *testing.T) {
	svc := newTestMasteryService()

	// 同分数、同复习时间 -> 复合分完全相同，只剩主题 ID 决定顺序
	reviewed := daysAgo(3)
	masteries := []model.Mastery{
		{TopicID: 9, Score: 0.4, LastReviewedAt: reviewed},
		{TopicID: 2, Score: 0.4, LastReviewedAt: reviewed},
		{TopicID: 5, Score: 0.4, LastReviewedAt: reviewed},
	}

	ranked := svc.rankForReview(masteries, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, uint(2), ranked[0].TopicID)
	assert.Equal(t, uint(5), ranked[1].TopicID)
	assert.Equal(t, uint(9), ranked[2].TopicID)
}

func TestRankForReviewOrdersAndTruncates(t *testing.T) {
	svc := newTestMasteryService()

	reviewed := daysAgo(1)
	masteries := []model.Mastery{
		{TopicID: 4, Score: 0.9, LastReviewedAt: reviewed},
		{TopicID: 8, Score: 0.2, LastReviewedAt: reviewed},
		{TopicID: 3, Score: 0.2, LastReviewedAt: reviewed},
	}

	ranked := svc.rankForReview(masteries, 2)

	// 掌握度最低的排前面，并列时 ID 小的优先；强主题被截断掉
	require.Len(t, ranked, 2)
	assert.Equal(t, uint(3), ranked[0].TopicID)
	assert.Equal(t, uint(8), ranked[1].TopicID)
}

func TestFirstSubmissionStartsFromInitialScore(t *testing.T) {
	svc := newTestMasteryService()

	m := svc.newMasteryRecord(7, 42)
	require.Equal(t, 0.0, m.Score)
	require.Equal(t, 0, m.ReviewCount)
	require.Nil(t, m.LastReviewedAt)

	// 首次答对从初始分出发，而不是从陈旧或冲突的状态出发
	svc.ApplyQuizResult(m, true, time.Now())
	assert.InDelta(t, 0.1, m.Score, 1e-9)
	assert.Equal(t, 1, m.ReviewCount)
	assert.NotNil(t, m.LastReviewedAt)
}
