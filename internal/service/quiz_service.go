package service

import (
	"errors"
	"fmt"
	"math/rand"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 出题时作为上下文送入 LLM 的片段数量
const questionContextChunks = 3

// QuizQuestionResponse 面向学生的题目视图，不携带正确选项
type QuizQuestionResponse struct {
	ID         uint                   `json:"id"`
	TopicID    uint                   `json:"topicId"`
	Stem       string                 `json:"stem"`
	Options    []model.QuestionOption `json:"options"`
	Difficulty model.DifficultyLevel  `json:"difficulty"`
}

// AnswerSubmit 答题提交
type AnswerSubmit struct {
	QuestionID      uint     `json:"questionId" binding:"required"`
	ChosenOption    string   `json:"chosenOption" binding:"required,oneof=A B C D a b c d"`
	ResponseTimeSec *float64 `json:"responseTimeSec"`
}

// AnswerFeedback 判题反馈，附更新后的掌握度
type AnswerFeedback struct {
	AnswerID        uint    `json:"answerId"`
	Correct         bool    `json:"correct"`
	CorrectOption   string  `json:"correctOption"`
	Explanation     string  `json:"explanation"`
	UserAnswer      string  `json:"userAnswer"`
	TopicID         uint    `json:"topicId"`
	NewMasteryScore float64 `json:"newMasteryScore"`
}

// QuizService 题目生成与判题
type QuizService struct {
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	ChunkRepo    *repository.ChunkRepository
	TopicRepo    *repository.TopicRepository
	Mastery      *MasteryService
	LLM          *LLMService
}

func NewQuizService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	chunkRepo *repository.ChunkRepository,
	topicRepo *repository.TopicRepository,
	mastery *MasteryService,
	llm *LLMService,
) *QuizService {
	return &QuizService{
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		ChunkRepo:    chunkRepo,
		TopicRepo:    topicRepo,
		Mastery:      mastery,
		LLM:          llm,
	}
}

// GenerateOrFetch 获取主题下的练习题
// 题库足够时随机抽样，不够时用 LLM 基于教材片段补齐并入库
func (s *QuizService) GenerateOrFetch(topicID uint, count int, difficulty model.DifficultyLevel) ([]QuizQuestionResponse, error) {
	topic, err := s.TopicRepo.FindByID(topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTopicNotFound
		}
		return nil, err
	}

	existing, err := s.QuestionRepo.FindByTopicID(topicID, difficulty)
	if err != nil {
		return nil, err
	}

	if len(existing) >= count {
		return formatQuestions(sampleQuestions(existing, count)), nil
	}

	logger.Log.Info("Generating new quiz questions",
		zap.Uint("topicID", topicID),
		zap.Int("want", count),
		zap.Int("existing", len(existing)))

	chunks, err := s.ChunkRepo.FindByTopicID(topicID, 5)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, util.ErrNoContentForTopic
	}

	generated := s.generateWithLLM(topic, chunks, count-len(existing), difficulty)

	all := append(existing, generated...)
	if count > len(all) {
		count = len(all)
	}
	return formatQuestions(sampleQuestions(all, count)), nil
}

// generateWithLLM LLM 出题失败只记日志，调用方用已有题目降级
func (s *QuizService) generateWithLLM(topic *model.Topic, chunks []model.Chunk, count int, difficulty model.DifficultyLevel) []model.QuizQuestion {
	var contextText strings.Builder
	for i, c := range chunks {
		if i >= questionContextChunks {
			break
		}
		if i > 0 {
			contextText.WriteString("\n\n")
		}
		contextText.WriteString(c.Text)
	}

	level := difficulty
	if level == "" {
		level = model.DifficultyMedium
	}

	generated, err := s.LLM.GenerateQuestions(topic.Name, contextText.String(), count, string(level))
	if err != nil {
		logger.Log.Error("Failed to generate questions with LLM",
			zap.Uint("topicID", topic.ID), zap.Error(err))
		return nil
	}

	questions := make([]model.QuizQuestion, 0, len(generated))
	for i, g := range generated {
		if i >= count {
			break
		}
		questions = append(questions, model.QuizQuestion{
			TopicID:       topic.ID,
			Stem:          g.Stem,
			OptionA:       g.OptionA,
			OptionB:       g.OptionB,
			OptionC:       g.OptionC,
			OptionD:       g.OptionD,
			CorrectOption: strings.ToUpper(g.CorrectOption),
			Explanation:   g.Explanation,
			Difficulty:    level,
			SourceChunkID: &chunks[0].ID,
		})
	}

	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		logger.Log.Error("Failed to store generated questions",
			zap.Uint("topicID", topic.ID), zap.Error(err))
		return nil
	}

	logger.Log.Info("Generated and stored new questions",
		zap.Uint("topicID", topic.ID), zap.Int("count", len(questions)))
	return questions
}

// SubmitAnswer 判题并驱动掌握度更新
func (s *QuizService) SubmitAnswer(userID uint, submit AnswerSubmit) (*AnswerFeedback, error) {
	question, err := s.QuestionRepo.FindByID(submit.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	chosen := strings.ToUpper(submit.ChosenOption)
	correct := chosen == question.CorrectOption

	answer := &model.QuizAnswer{
		UserID:          userID,
		QuestionID:      submit.QuestionID,
		ChosenOption:    chosen,
		Correct:         correct,
		ResponseTimeSec: submit.ResponseTimeSec,
	}
	if err := s.AnswerRepo.Create(answer); err != nil {
		return nil, err
	}

	logger.Log.Info("Answer submitted",
		zap.Uint("userID", userID),
		zap.Uint("questionID", submit.QuestionID),
		zap.Bool("correct", correct))

	mastery, err := s.Mastery.UpdateFromQuiz(userID, question.TopicID, correct)
	if err != nil {
		return nil, err
	}

	return &AnswerFeedback{
		AnswerID:        answer.ID,
		Correct:         correct,
		CorrectOption:   question.CorrectOption,
		Explanation:     question.Explanation,
		UserAnswer:      chosen,
		TopicID:         question.TopicID,
		NewMasteryScore: mastery.Score,
	}, nil
}

// CreateQuestion 人工录题（管理端）
func (s *QuizService) CreateQuestion(question *model.QuizQuestion) error {
	if _, err := s.TopicRepo.FindByID(question.TopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTopicNotFound
		}
		return err
	}

	question.CorrectOption = strings.ToUpper(question.CorrectOption)
	if !strings.Contains("ABCD", question.CorrectOption) || len(question.CorrectOption) != 1 {
		return fmt.Errorf("correct option must be one of A/B/C/D")
	}
	if question.Difficulty == "" {
		question.Difficulty = model.DifficultyMedium
	}

	if err := s.QuestionRepo.Create(question); err != nil {
		return err
	}

	logger.Log.Info("Created question", zap.Uint("questionID", question.ID))
	return nil
}

// sampleQuestions 无放回随机抽样
func sampleQuestions(questions []model.QuizQuestion, count int) []model.QuizQuestion {
	if count >= len(questions) {
		return questions
	}
	indexes := rand.Perm(len(questions))[:count]
	sampled := make([]model.QuizQuestion, 0, count)
	for _, i := range indexes {
		sampled = append(sampled, questions[i])
	}
	return sampled
}

func formatQuestions(questions []model.QuizQuestion) []QuizQuestionResponse {
	responses := make([]QuizQuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, QuizQuestionResponse{
			ID:      q.ID,
			TopicID: q.TopicID,
			Stem:    q.Stem,
			Options: []model.QuestionOption{
				{Label: "A", Text: q.OptionA},
				{Label: "B", Text: q.OptionB},
				{Label: "C", Text: q.OptionC},
				{Label: "D", Text: q.OptionD},
			},
			Difficulty: q.Difficulty,
		})
	}
	return responses
}
