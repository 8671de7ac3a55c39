package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"med_edu_backend/internal/config"
	"net/http"
	"strings"
	"time"
)

// LLMService 封装 OpenAI 兼容的出题/总结调用
// 所有 prompt 都要求模型只依据提供的教材片段作答，降低幻觉风险
type LLMService struct {
	config config.AIConfig
	client *http.Client
}

func NewLLMService(cfg config.AIConfig) *LLMService {
	return &LLMService{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratedQuestion LLM 返回的单道选择题
type GeneratedQuestion struct {
	Stem          string `json:"stem"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// GeneratedSummary LLM 返回的主题总结
type GeneratedSummary struct {
	Summary        string          `json:"summary"`
	KeyPoints      []string        `json:"key_points"`
	HighYieldTraps []HighYieldTrap `json:"high_yield_traps"`
}

// HighYieldTrap 考试高频陷阱点
type HighYieldTrap struct {
	Point       string `json:"point"`
	Explanation string `json:"explanation"`
}

// Chat 单轮对话调用
func (s *LLMService) Chat(systemPrompt, userPrompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM API error (status %d): %s", resp.StatusCode, string(body))
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", err
	}

	if completion.Error != nil {
		return "", fmt.Errorf("LLM API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("LLM API returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// GenerateQuestions 基于教材片段生成住院医师水平的四选一临床题
func (s *LLMService) GenerateQuestions(topicName, chunksText string, count int, difficulty string) ([]GeneratedQuestion, error) {
	systemPrompt := "You are a medical educator writing board-style multiple choice questions. " +
		"Base every question strictly on the provided source text. " +
		"Never invent facts that are not supported by the text. " +
		"Respond with a JSON array only, no markdown, no commentary."

	userPrompt := fmt.Sprintf(
		"Topic: %s\nDifficulty: %s\n\nSource text:\n%s\n\n"+
			"Write %d multiple choice questions at medical residency level. "+
			"Each element must have fields: stem, option_a, option_b, option_c, option_d, "+
			"correct_option (one of A/B/C/D), explanation.",
		topicName, difficulty, chunksText, count)

	content, err := s.Chat(systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}
	return questions, nil
}

// GenerateSummary 基于教材片段生成主题总结与要点
func (s *LLMService) GenerateSummary(topicName, chunksText string, includeHighYield bool) (*GeneratedSummary, error) {
	systemPrompt := "You are a medical educator summarizing exam preparation material. " +
		"Use only the provided source text. " +
		"Respond with a single JSON object only, no markdown, no commentary."

	fields := `"summary" (string), "key_points" (array of strings)`
	if includeHighYield {
		fields += `, "high_yield_traps" (array of objects with "point" and "explanation")`
	}

	userPrompt := fmt.Sprintf(
		"Topic: %s\n\nSource text:\n%s\n\n"+
			"Produce a concise study summary as a JSON object with fields: %s.",
		topicName, chunksText, fields)

	content, err := s.Chat(systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var summary GeneratedSummary
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse generated summary: %w", err)
	}
	return &summary, nil
}

// stripCodeFence 去掉模型偶尔包裹的 ```json 围栏
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
