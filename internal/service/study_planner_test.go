package service

import (
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner() *StudyPlanner {
	return &StudyPlanner{
		Mastery: newTestMasteryService(),
		Cfg:     config.PlannerConfig{DefaultDurationMinutes: 120},
	}
}

func candidateWith(topicID uint, name string, score float64, priority model.PriorityLevel) planCandidate {
	return planCandidate{
		topic:    model.Topic{BaseModel: model.BaseModel{ID: topicID}, Name: name},
		mastery:  model.Mastery{TopicID: topicID, Score: score},
		priority: priority,
	}
}

func TestAllocateTimeEqualPriorities(t *testing.T) {
	p := newTestPlanner()

	candidates := []planCandidate{
		candidateWith(1, "Hypertension", 0.2, model.PriorityHigh),
		candidateWith(2, "Asthma", 0.3, model.PriorityHigh),
		candidateWith(3, "Sepsis", 0.4, model.PriorityHigh),
	}

	allocations := p.allocateTime(candidates, 120)

	require.Len(t, allocations, 3)
	assert.Equal(t, []int{40, 40, 40}, allocations)
}

func TestAllocateTimeSumInvariant(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name       string
		priorities []model.PriorityLevel
		total      int
	}{
		{"mixed priorities", []model.PriorityLevel{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}, 100},
		{"single topic", []model.PriorityLevel{model.PriorityMedium}, 45},
		{"awkward remainder", []model.PriorityLevel{model.PriorityHigh, model.PriorityHigh, model.PriorityLow}, 95},
		{"short session", []model.PriorityLevel{model.PriorityLow, model.PriorityHigh}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := make([]planCandidate, len(tt.priorities))
			for i, pr := range tt.priorities {
				candidates[i] = candidateWith(uint(i+1), "Topic", 0.5, pr)
			}

			allocations := p.allocateTime(candidates, tt.total)

			require.Len(t, allocations, len(candidates))
			sum := 0
			for _, a := range allocations {
				sum += a
			}
			// 各块之和必须精确等于请求时长
			assert.Equal(t, tt.total, sum)
		})
	}
}

func TestAllocateTimeMinimumFloor(t *testing.T) {
	p := newTestPlanner()

	// LOW 权重按比例不足 20 分钟，应被提升到下限
	candidates := []planCandidate{
		candidateWith(1, "Thyroid Disorders", 0.9, model.PriorityLow),
		candidateWith(2, "Stroke", 0.2, model.PriorityHigh),
	}

	allocations := p.allocateTime(candidates, 50)

	require.Len(t, allocations, 2)
	assert.GreaterOrEqual(t, allocations[0], minBlockMinutes)
	assert.Equal(t, 50, allocations[0]+allocations[1])
}

func TestAllocateTimeEmpty(t *testing.T) {
	p := newTestPlanner()
	assert.Empty(t, p.allocateTime(nil, 120))
}

func TestPriorityWeight(t *testing.T) {
	assert.InDelta(t, 1.5, priorityWeight(model.PriorityHigh), 1e-9)
	assert.InDelta(t, 1.0, priorityWeight(model.PriorityMedium), 1e-9)
	assert.InDelta(t, 0.7, priorityWeight(model.PriorityLow), 1e-9)

	// 大小写不敏感，未知标签按 MEDIUM 处理
	assert.InDelta(t, 1.5, priorityWeight(model.PriorityLevel("high")), 1e-9)
	assert.InDelta(t, 1.0, priorityWeight(model.PriorityLevel("unknown")), 1e-9)
}

func TestBuildBlockSplitTiers(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name          string
		score         float64
		allocated     int
		wantReviewMin int
		wantQuestions int
	}{
		{"low mastery favors review", 0.2, 60, 36, 12},
		{"mid mastery even split", 0.5, 40, 20, 10},
		{"high mastery favors practice", 0.8, 20, 8, 6},
		{"question count floor", 0.9, 5, 2, minQuestionCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidateWith(7, "Pneumonia", tt.score, model.PriorityMedium)
			block := p.buildBlock(c, tt.allocated)

			assert.Equal(t, uint(7), block.TopicID)
			assert.Equal(t, "Pneumonia", block.Topic)
			assert.Equal(t, tt.allocated, block.DurationMinutes)
			assert.Contains(t, block.ReviewMaterial, "Review Pneumonia for")
			assert.Contains(t, block.ReviewMaterial, "minutes")
			assert.Equal(t, tt.wantQuestions, block.QuizQuestionCount)
			assert.NotEmpty(t, block.Reason)
		})
	}
}

func TestRecommendationReason(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name         string
		score        float64
		lastReviewed bool
		gapDays      int
		want         string
	}{
		{"weak and never reviewed", 0.3, false, 0, "Low mastery - needs foundational review | Never reviewed - new topic"},
		{"below target with stale review", 0.6, true, 5, "Below target mastery | Not reviewed for 5 days - spaced repetition"},
		{"strong and fresh", 0.8, true, 1, "Recommended for review"},
		{"strong but never reviewed", 0.8, false, 0, "Never reviewed - new topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Mastery{Score: tt.score}
			if tt.lastReviewed {
				m.LastReviewedAt = daysAgo(tt.gapDays)
			}
			assert.Equal(t, tt.want, p.recommendationReason(m))
		})
	}
}

func TestEmptyPlan(t *testing.T) {
	p := newTestPlanner()

	plan := p.emptyPlan(42, 90)

	assert.Equal(t, uint(42), plan.UserID)
	assert.Equal(t, 90, plan.DurationMinutes)
	assert.Empty(t, plan.Blocks)
	assert.Zero(t, plan.TotalTopics)
	assert.Equal(t, "No topics available for study. Start by uploading content or taking quizzes.", plan.Message)
}

func TestFocusAreas(t *testing.T) {
	blocks := []model.StudyBlock{
		{Topic: "Hypertension"},
		{Topic: "Asthma"},
		{Topic: "Sepsis"},
		{Topic: "Stroke"},
	}

	assert.Equal(t, []string{"Hypertension", "Asthma", "Sepsis"}, focusAreas(blocks))
	assert.Empty(t, focusAreas(nil))
}

func TestAverageMastery(t *testing.T) {
	blocks := []model.StudyBlock{
		{CurrentMastery: 0.2},
		{CurrentMastery: 0.4},
		{CurrentMastery: 0.9},
	}

	assert.InDelta(t, 0.5, averageMastery(blocks), 1e-9)
	assert.Zero(t, averageMastery(nil))
}

func TestMaxCandidateTopics(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		want     int
	}{
		{"short session keeps floor of three", 60, 3},
		{"exactly three topics worth", 105, 3},
		{"default session", 120, 3},
		{"long session", 500, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maxCandidateTopics(tt.duration))
		})
	}
}

func TestCapByDuration(t *testing.T) {
	candidates := []planCandidate{
		candidateWith(1, "Hypertension", 0.3, model.PriorityHigh),
		candidateWith(2, "Asthma", 0.5, model.PriorityMedium),
		candidateWith(3, "Sepsis", 0.9, model.PriorityLow),
	}

	// 20 分钟只撑得起一个最小学习块
	assert.Len(t, capByDuration(candidates, 20), 1)
	assert.Len(t, capByDuration(candidates, 50), 2)
	assert.Len(t, capByDuration(candidates, 120), 3)

	// 截断保持原有顺序
	capped := capByDuration(candidates, 50)
	assert.Equal(t, uint(1), capped[0].topic.ID)
	assert.Equal(t, uint(2), capped[1].topic.ID)
}

func TestAllocateTimeLastBlockNeverNegative(t *testing.T) {
	p := newTestPlanner()

	// 保底分钟数超过总时长时，最后一块收 0 而不是负数
	candidates := []planCandidate{
		candidateWith(1, "Hypertension", 0.3, model.PriorityHigh),
		candidateWith(2, "Asthma", 0.3, model.PriorityHigh),
		candidateWith(3, "Sepsis", 0.3, model.PriorityHigh),
	}

	allocations := p.allocateTime(candidates, 20)

	require.Len(t, allocations, 3)
	assert.Equal(t, []int{20, 20, 0}, allocations)
	for _, a := range allocations {
		assert.GreaterOrEqual(t, a, 0)
	}
}
