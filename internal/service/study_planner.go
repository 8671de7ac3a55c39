package service

import (
	"fmt"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 每个主题的最小学习时长（分钟）
const minBlockMinutes = 20

// 单主题"复习+练习"块的估算时长（分钟），用于限制候选主题数
const minutesPerTopic = 35

// 自适应选题时薄弱主题的候选上限
const weakTopicLimit = 10

// 练习题估算：约 2 分钟一题
const minutesPerQuestion = 2

// 练习题数下限
const minQuestionCount = 3

// 低掌握度分界：低于该值的主题给更多被动复习时间
const lowMasteryThreshold = 0.3

// planCandidate 选题结果：主题 + 掌握度快照 + 优先级标签
type planCandidate struct {
	topic    model.Topic
	mastery  model.Mastery
	priority model.PriorityLevel
}

// StudyPlanner 自适应学习计划器
// 生成流程为纯流水线：选题 -> 分配时长 -> 构建学习块 -> 汇总，
// 每次请求从头执行，不保留中间状态
type StudyPlanner struct {
	Mastery   *MasteryService
	TopicRepo *repository.TopicRepository
	Cfg       config.PlannerConfig
}

func NewStudyPlanner(mastery *MasteryService, topicRepo *repository.TopicRepository, cfg config.PlannerConfig) *StudyPlanner {
	return &StudyPlanner{
		Mastery:   mastery,
		TopicRepo: topicRepo,
		Cfg:       cfg,
	}
}

// GeneratePlan 生成学习计划骨架（学习块未填充内容与题目）
// focusTopicIDs 非空时只用指定主题，否则自适应选择薄弱主题
func (p *StudyPlanner) GeneratePlan(userID uint, durationMinutes int, focusTopicIDs []uint) (*model.StudyPlan, error) {
	if durationMinutes <= 0 {
		durationMinutes = p.Cfg.DefaultDurationMinutes
	}

	logger.Log.Info("Generating study plan",
		zap.Uint("userID", userID),
		zap.Int("durationMinutes", durationMinutes),
		zap.Int("focusTopics", len(focusTopicIDs)))

	var candidates []planCandidate
	var err error
	if len(focusTopicIDs) > 0 {
		candidates, err = p.focusCandidates(userID, focusTopicIDs)
	} else {
		candidates, err = p.selectCandidates(userID, durationMinutes)
	}
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return p.emptyPlan(userID, durationMinutes), nil
	}

	candidates = capByDuration(candidates, durationMinutes)
	allocations := p.allocateTime(candidates, durationMinutes)

	blocks := make([]model.StudyBlock, 0, len(candidates))
	for i, c := range candidates {
		blocks = append(blocks, p.buildBlock(c, allocations[i]))
	}

	plan := &model.StudyPlan{
		UserID:                userID,
		DurationMinutes:       durationMinutes,
		GeneratedAt:           time.Now(),
		Blocks:                blocks,
		TotalTopics:           len(blocks),
		FocusAreas:            focusAreas(blocks),
		AverageCurrentMastery: averageMastery(blocks),
	}

	logger.Log.Info("Generated study plan", zap.Int("blocks", len(blocks)))
	return plan, nil
}

// selectCandidates 自适应选题：薄弱主题排序后按可用时长截断
func (p *StudyPlanner) selectCandidates(userID uint, durationMinutes int) ([]planCandidate, error) {
	weak, err := p.Mastery.WeakTopicsForReview(userID, weakTopicLimit)
	if err != nil {
		return nil, err
	}

	topicIDs := make([]uint, 0, len(weak))
	for _, m := range weak {
		topicIDs = append(topicIDs, m.TopicID)
	}

	topics, err := p.TopicRepo.FindByIDs(topicIDs)
	if err != nil {
		return nil, err
	}
	topicMap := make(map[uint]model.Topic, len(topics))
	for _, t := range topics {
		topicMap[t.ID] = t
	}

	var candidates []planCandidate
	for _, m := range weak {
		topic, ok := topicMap[m.TopicID]
		if !ok {
			continue
		}
		candidates = append(candidates, planCandidate{
			topic:    topic,
			mastery:  m,
			priority: p.Mastery.ClassifyPriority(&m),
		})
	}

	if maxTopics := maxCandidateTopics(durationMinutes); len(candidates) > maxTopics {
		candidates = candidates[:maxTopics]
	}
	return candidates, nil
}

// maxCandidateTopics 粗略按每主题 35 分钟估算可容纳的主题数，至少保留 3 个
func maxCandidateTopics(durationMinutes int) int {
	n := durationMinutes / minutesPerTopic
	if n < 3 {
		n = 3
	}
	return n
}

// focusCandidates 用户指定主题时按给定顺序全部使用
func (p *StudyPlanner) focusCandidates(userID uint, topicIDs []uint) ([]planCandidate, error) {
	topics, err := p.TopicRepo.FindByIDs(topicIDs)
	if err != nil {
		return nil, err
	}
	topicMap := make(map[uint]model.Topic, len(topics))
	for _, t := range topics {
		topicMap[t.ID] = t
	}

	var candidates []planCandidate
	for _, id := range topicIDs {
		topic, ok := topicMap[id]
		if !ok {
			continue
		}
		mastery, err := p.Mastery.GetOrCreate(userID, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, planCandidate{
			topic:    topic,
			mastery:  *mastery,
			priority: p.Mastery.ClassifyPriority(mastery),
		})
	}
	return candidates, nil
}

// capByDuration 截断候选列表，保证总时长撑得起每个主题的最小学习时长
func capByDuration(candidates []planCandidate, totalMinutes int) []planCandidate {
	maxBlocks := totalMinutes / minBlockMinutes
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	if len(candidates) > maxBlocks {
		candidates = candidates[:maxBlocks]
	}
	return candidates
}

// allocateTime 按优先级权重比例分配学习时长
// 每个主题至少 minBlockMinutes 分钟；最后一个主题吸收全部剩余时间，
// 时长足够时分配总和精确等于 totalMinutes。前面主题的保底分钟数
// 把剩余时间耗尽时，最后一个主题收 0 而不是负数
func (p *StudyPlanner) allocateTime(candidates []planCandidate, totalMinutes int) []int {
	if len(candidates) == 0 {
		return []int{}
	}

	weights := make([]float64, len(candidates))
	var totalWeight float64
	for i, c := range candidates {
		weights[i] = priorityWeight(c.priority)
		totalWeight += weights[i]
	}

	allocations := make([]int, len(candidates))
	remaining := totalMinutes
	for i, w := range weights {
		if i == len(weights)-1 {
			if remaining < 0 {
				remaining = 0
			}
			allocations[i] = remaining
			break
		}
		allocated := int((w / totalWeight) * float64(totalMinutes))
		if allocated < minBlockMinutes {
			allocated = minBlockMinutes
		}
		allocations[i] = allocated
		remaining -= allocated
	}
	return allocations
}

// priorityWeight 标签不区分大小写；未知标签按 MEDIUM 处理
func priorityWeight(priority model.PriorityLevel) float64 {
	switch model.PriorityLevel(strings.ToUpper(string(priority))) {
	case model.PriorityHigh:
		return 1.5
	case model.PriorityLow:
		return 0.7
	default:
		return 1.0
	}
}

// buildBlock 构建单主题学习块：按掌握度分层切分复习/练习时间
//   - score < 0.3:  60% 复习 / 40% 练习（基础薄弱先看内容）
//   - 0.3 - 0.7:    50% / 50%
//   - score >= 0.7: 40% 复习 / 60% 练习（掌握较好多做题）
func (p *StudyPlanner) buildBlock(c planCandidate, allocatedMinutes int) model.StudyBlock {
	var reviewMinutes int
	switch {
	case c.mastery.Score < lowMasteryThreshold:
		reviewMinutes = int(float64(allocatedMinutes) * 0.6)
	case c.mastery.Score < p.Mastery.Cfg.WeakThreshold:
		reviewMinutes = int(float64(allocatedMinutes) * 0.5)
	default:
		reviewMinutes = int(float64(allocatedMinutes) * 0.4)
	}
	practiceMinutes := allocatedMinutes - reviewMinutes

	questionCount := practiceMinutes / minutesPerQuestion
	if questionCount < minQuestionCount {
		questionCount = minQuestionCount
	}

	return model.StudyBlock{
		TopicID:           c.topic.ID,
		Topic:             c.topic.Name,
		DurationMinutes:   allocatedMinutes,
		ReviewMaterial:    fmt.Sprintf("Review %s for %d minutes", c.topic.Name, reviewMinutes),
		QuizQuestions:     []model.QuizBlockQuestion{},
		QuizQuestionCount: questionCount,
		CurrentMastery:    util.Round3(c.mastery.Score),
		Reason:            p.recommendationReason(&c.mastery),
		Priority:          c.priority,
	}
}

// recommendationReason 拼装推荐理由：低掌握度、低于目标、间隔复习、新主题
func (p *StudyPlanner) recommendationReason(m *model.Mastery) string {
	var reasons []string

	if m.Score < 0.5 {
		reasons = append(reasons, "Low mastery - needs foundational review")
	} else if m.Score < p.Mastery.Cfg.WeakThreshold {
		reasons = append(reasons, "Below target mastery")
	}

	days, reviewed := util.ReviewGapDays(m.LastReviewedAt)
	if !reviewed {
		reasons = append(reasons, "Never reviewed - new topic")
	} else if days > p.Mastery.Cfg.SpacedRepetitionDays {
		reasons = append(reasons, fmt.Sprintf("Not reviewed for %d days - spaced repetition", days))
	}

	if len(reasons) == 0 {
		return "Recommended for review"
	}
	return strings.Join(reasons, " | ")
}

// emptyPlan 无可学主题不是错误，返回带说明的空计划
func (p *StudyPlanner) emptyPlan(userID uint, durationMinutes int) *model.StudyPlan {
	return &model.StudyPlan{
		UserID:          userID,
		DurationMinutes: durationMinutes,
		GeneratedAt:     time.Now(),
		Blocks:          []model.StudyBlock{},
		TotalTopics:     0,
		FocusAreas:      []string{},
		Message:         "No topics available for study. Start by uploading content or taking quizzes.",
	}
}

// focusAreas 取前三个学习块的主题名（选题阶段已按优先级排序）
func focusAreas(blocks []model.StudyBlock) []string {
	areas := make([]string, 0, 3)
	for i, b := range blocks {
		if i >= 3 {
			break
		}
		areas = append(areas, b.Topic)
	}
	return areas
}

func averageMastery(blocks []model.StudyBlock) float64 {
	if len(blocks) == 0 {
		return 0.0
	}
	var sum float64
	for _, b := range blocks {
		sum += b.CurrentMastery
	}
	return util.Round3(sum / float64(len(blocks)))
}
