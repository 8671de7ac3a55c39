package service

import (
	"med_edu_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleQuestions(t *testing.T) {
	questions := []model.QuizQuestion{
		{BaseModel: model.BaseModel{ID: 1}},
		{BaseModel: model.BaseModel{ID: 2}},
		{BaseModel: model.BaseModel{ID: 3}},
		{BaseModel: model.BaseModel{ID: 4}},
	}

	// 请求数不小于总数时原样返回
	assert.Len(t, sampleQuestions(questions, 4), 4)
	assert.Len(t, sampleQuestions(questions, 10), 4)

	sampled := sampleQuestions(questions, 2)
	require.Len(t, sampled, 2)

	// 无放回抽样，不出现重复
	seen := map[uint]bool{}
	for _, q := range sampled {
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}

func TestFormatQuestionsHidesAnswer(t *testing.T) {
	questions := []model.QuizQuestion{
		{
			BaseModel:     model.BaseModel{ID: 11},
			TopicID:       5,
			Stem:          "First-line treatment for essential hypertension?",
			OptionA:       "ACE inhibitor",
			OptionB:       "Beta blocker",
			OptionC:       "Loop diuretic",
			OptionD:       "Alpha blocker",
			CorrectOption: "A",
			Difficulty:    model.DifficultyMedium,
		},
	}

	responses := formatQuestions(questions)

	require.Len(t, responses, 1)
	r := responses[0]
	assert.Equal(t, uint(11), r.ID)
	assert.Equal(t, uint(5), r.TopicID)
	require.Len(t, r.Options, 4)
	assert.Equal(t, "A", r.Options[0].Label)
	assert.Equal(t, "ACE inhibitor", r.Options[0].Text)
	assert.Equal(t, model.DifficultyMedium, r.Difficulty)
}
