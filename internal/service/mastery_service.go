package service

import (
	"errors"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"med_edu_backend/pkg/monitoring"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 强主题阈值：分数达到该值后仅在用户显式要求时复习
const strongThreshold = 0.85

// 中等掌握主题的复习间隔（天），超过则进入 MEDIUM 优先级
const mediumReviewGapDays = 7

// 距上次复习天数对排序优先级的加分上限
const maxRecencyBonus = 50.0

// MasteryService 掌握度跟踪：更新规则、优先级分类、薄弱主题排序
type MasteryService struct {
	MasteryRepo *repository.MasteryRepository
	TopicRepo   *repository.TopicRepository
	AnswerRepo  *repository.AnswerRepository
	UserRepo    *repository.UserRepository
	Cfg         config.MasteryConfig
	DB          *gorm.DB
}

func NewMasteryService(
	masteryRepo *repository.MasteryRepository,
	topicRepo *repository.TopicRepository,
	answerRepo *repository.AnswerRepository,
	userRepo *repository.UserRepository,
	cfg config.MasteryConfig,
	db *gorm.DB,
) *MasteryService {
	return &MasteryService{
		MasteryRepo: masteryRepo,
		TopicRepo:   topicRepo,
		AnswerRepo:  answerRepo,
		UserRepo:    userRepo,
		Cfg:         cfg,
		DB:          db,
	}
}

// GetOrCreate 获取掌握度记录，不存在时按初始分创建
func (s *MasteryService) GetOrCreate(userID, topicID uint) (*model.Mastery, error) {
	mastery, err := s.MasteryRepo.FindByUserAndTopic(userID, topicID)
	if err == nil {
		return mastery, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	mastery = s.newMasteryRecord(userID, topicID)
	if err := s.MasteryRepo.Create(mastery); err != nil {
		return nil, err
	}

	logger.Log.Info("Created new mastery record",
		zap.Uint("userID", userID),
		zap.Uint("topicID", topicID))
	return mastery, nil
}

// newMasteryRecord 首次接触主题时的初始记录：初始分、零复习次数、从未复习
func (s *MasteryService) newMasteryRecord(userID, topicID uint) *model.Mastery {
	return &model.Mastery{
		UserID:      userID,
		TopicID:     topicID,
		Score:       s.Cfg.InitialScore,
		ReviewCount: 0,
	}
}

// ApplyQuizResult 掌握度状态转移函数，无副作用之外的 I/O
// 答对: score' = min(1, score + increment*(1-score))，越接近满分奖励越小
// 答错: score' = max(0, score - decrement)，固定扣分
func (s *MasteryService) ApplyQuizResult(m *model.Mastery, correct bool, now time.Time) {
	if correct {
		increment := s.Cfg.CorrectIncrement * (1.0 - m.Score)
		m.Score = m.Score + increment
		if m.Score > 1.0 {
			m.Score = 1.0
		}
	} else {
		m.Score = m.Score - s.Cfg.IncorrectDecrement
		if m.Score < 0.0 {
			m.Score = 0.0
		}
	}

	m.LastReviewedAt = &now
	m.ReviewCount++
}

// UpdateFromQuiz 根据一次答题结果更新掌握度
// 对同一 (user, topic) 的并发提交通过行锁串行化
func (s *MasteryService) UpdateFromQuiz(userID, topicID uint, correct bool) (*model.Mastery, error) {
	var updated *model.Mastery

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		mastery, err := s.MasteryRepo.FindByUserAndTopicForUpdate(tx, userID, topicID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// FOR UPDATE 锁不住不存在的行，并发首次提交会同时走到这里。
			// 幂等插入后重读加锁，无论初始行由哪个事务写入都能拿到锁。
			seed := s.newMasteryRecord(userID, topicID)
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
				return err
			}
			mastery, err = s.MasteryRepo.FindByUserAndTopicForUpdate(tx, userID, topicID)
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		oldScore := mastery.Score
		s.ApplyQuizResult(mastery, correct, time.Now())

		if err := tx.Save(mastery).Error; err != nil {
			return err
		}

		logger.Log.Info("Updated mastery",
			zap.Uint("userID", userID),
			zap.Uint("topicID", topicID),
			zap.Float64("old", oldScore),
			zap.Float64("new", mastery.Score),
			zap.Bool("correct", correct))

		updated = mastery
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.MasteryUpdates.WithLabelValues(boolLabel(correct)).Inc()
	return updated, nil
}

// ClassifyPriority 间隔复习优先级分类，纯函数，任何输入恰好落入一个标签
//   - 分数低于弱阈值且超过间隔天数未复习 -> HIGH
//   - 分数在 [弱阈值, 0.85) 且超过 7 天未复习 -> MEDIUM
//   - 分数达到 0.85 -> LOW
//   - 其余情况（如刚复习过的弱主题）-> MEDIUM 兜底，任何主题都不会漏分类
func (s *MasteryService) ClassifyPriority(m *model.Mastery) model.PriorityLevel {
	days, reviewed := util.ReviewGapDays(m.LastReviewedAt)

	// 从未复习视为间隔无限大
	overdue := func(threshold int) bool {
		return !reviewed || days > threshold
	}

	if m.Score < s.Cfg.WeakThreshold && overdue(s.Cfg.SpacedRepetitionDays) {
		return model.PriorityHigh
	}

	if m.Score >= s.Cfg.WeakThreshold && m.Score < strongThreshold && overdue(mediumReviewGapDays) {
		return model.PriorityMedium
	}

	if m.Score >= strongThreshold {
		return model.PriorityLow
	}

	return model.PriorityMedium
}

// PriorityScore 排序用复合优先级分：掌握度越低、越久未复习分越高
// 从未复习的记录直接拿满时间加分
func (s *MasteryService) PriorityScore(m *model.Mastery) float64 {
	score := (1.0 - m.Score) * 100

	days, reviewed := util.ReviewGapDays(m.LastReviewedAt)
	if !reviewed {
		score += maxRecencyBonus
	} else {
		bonus := float64(days) * 5
		if bonus > maxRecencyBonus {
			bonus = maxRecencyBonus
		}
		score += bonus
	}

	return score
}

// WeakTopicsForReview 按复合优先级取最需要复习的前 limit 个主题
func (s *MasteryService) WeakTopicsForReview(userID uint, limit int) ([]model.Mastery, error) {
	masteries, err := s.MasteryRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.rankForReview(masteries, limit), nil
}

// rankForReview 复合优先级降序排列并截断，不触碰存储
// 分数相同时按主题 ID 升序，保证结果可复现
func (s *MasteryService) rankForReview(masteries []model.Mastery, limit int) []model.Mastery {
	sort.SliceStable(masteries, func(i, j int) bool {
		si, sj := s.PriorityScore(&masteries[i]), s.PriorityScore(&masteries[j])
		if si != sj {
			return si > sj
		}
		return masteries[i].TopicID < masteries[j].TopicID
	})

	if limit > 0 && len(masteries) > limit {
		masteries = masteries[:limit]
	}
	return masteries
}

// Dashboard 用户掌握度总览：整体均分、强弱主题、近期活动、分系统聚合
func (s *MasteryService) Dashboard(userID uint) (*model.MasteryDashboard, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	masteries, err := s.MasteryRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	if len(masteries) == 0 {
		return &model.MasteryDashboard{
			UserID:         userID,
			StrongTopics:   []model.MasteryScore{},
			WeakTopics:     []model.MasteryScore{},
			RecentActivity: []model.MasteryScore{},
			BySystem:       []model.SystemAggregate{},
		}, nil
	}

	var sum float64
	topicIDs := make([]uint, 0, len(masteries))
	for _, m := range masteries {
		sum += m.Score
		topicIDs = append(topicIDs, m.TopicID)
	}

	topics, err := s.TopicRepo.FindByIDs(topicIDs)
	if err != nil {
		return nil, err
	}
	topicMap := make(map[uint]model.Topic, len(topics))
	for _, t := range topics {
		topicMap[t.ID] = t
	}

	scores := make([]model.MasteryScore, 0, len(masteries))
	for _, m := range masteries {
		topic, ok := topicMap[m.TopicID]
		if !ok {
			continue
		}
		scores = append(scores, model.MasteryScore{
			TopicID:        m.TopicID,
			TopicName:      topic.Name,
			SystemName:     topic.SystemName,
			Score:          m.Score,
			LastReviewedAt: m.LastReviewedAt,
			ReviewCount:    m.ReviewCount,
		})
	}

	var strong, weak []model.MasteryScore
	for _, sc := range scores {
		if sc.Score >= s.Cfg.WeakThreshold {
			strong = append(strong, sc)
		} else {
			weak = append(weak, sc)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].Score > strong[j].Score })
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Score < weak[j].Score })

	var recent []model.MasteryScore
	for _, sc := range scores {
		if sc.LastReviewedAt != nil {
			recent = append(recent, sc)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastReviewedAt.After(*recent[j].LastReviewedAt)
	})

	return &model.MasteryDashboard{
		UserID:         userID,
		OverallMastery: util.Round3(sum / float64(len(masteries))),
		TotalTopics:    len(masteries),
		StrongTopics:   topN(strong, 10),
		WeakTopics:     topN(weak, 10),
		RecentActivity: topN(recent, 10),
		BySystem:       aggregateBySystem(scores),
	}, nil
}

// TopicDetail 单主题掌握度详情，附最近答题准确率与复习建议
func (s *MasteryService) TopicDetail(userID, topicID uint) (*model.TopicMasteryDetail, error) {
	topic, err := s.TopicRepo.FindByID(topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTopicNotFound
		}
		return nil, err
	}

	mastery, err := s.GetOrCreate(userID, topicID)
	if err != nil {
		return nil, err
	}

	answers, err := s.AnswerRepo.FindByUserAndTopic(userID, topicID)
	if err != nil {
		return nil, err
	}

	total := len(answers)
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	needsReview := false
	recommendedAction := "Keep learning"
	days, reviewed := util.ReviewGapDays(mastery.LastReviewedAt)

	if mastery.Score < s.Cfg.WeakThreshold {
		needsReview = true
		recommendedAction = "Study content and practice more questions"
	} else if reviewed && days > s.Cfg.SpacedRepetitionDays {
		needsReview = true
		recommendedAction = "Review for spaced repetition"
	}

	return &model.TopicMasteryDetail{
		TopicID:                topicID,
		TopicName:              topic.Name,
		Score:                  mastery.Score,
		LastReviewedAt:         mastery.LastReviewedAt,
		ReviewCount:            mastery.ReviewCount,
		TotalQuestionsAnswered: total,
		CorrectAnswers:         correct,
		Accuracy:               util.Round3(accuracy),
		NeedsReview:            needsReview,
		RecommendedAction:      recommendedAction,
	}, nil
}

func topN(scores []model.MasteryScore, n int) []model.MasteryScore {
	if scores == nil {
		return []model.MasteryScore{}
	}
	if len(scores) > n {
		return scores[:n]
	}
	return scores
}

// aggregateBySystem 按身体系统聚合，保持首次出现的顺序
func aggregateBySystem(scores []model.MasteryScore) []model.SystemAggregate {
	type acc struct {
		count int
		sum   float64
	}
	byName := make(map[string]*acc)
	var order []string

	for _, sc := range scores {
		name := sc.SystemName
		if name == "" {
			name = "General"
		}
		a, ok := byName[name]
		if !ok {
			a = &acc{}
			byName[name] = a
			order = append(order, name)
		}
		a.count++
		a.sum += sc.Score
	}

	result := make([]model.SystemAggregate, 0, len(order))
	for _, name := range order {
		a := byName[name]
		result = append(result, model.SystemAggregate{
			SystemName:     name,
			Count:          a.count,
			AverageMastery: util.Round3(a.sum / float64(a.count)),
		})
	}
	return result
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
