package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"med_edu_backend/internal/config"
	"net/http"
	"time"
)

// EmbeddingService 调用 OpenAI 兼容的 embeddings 接口
// 生成的向量以 JSON 字符串形式挂在 Chunk 上
type EmbeddingService struct {
	config config.AIConfig
	client *http.Client
}

func NewEmbeddingService(cfg config.AIConfig) *EmbeddingService {
	return &EmbeddingService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *EmbeddingService) CreateEmbedding(text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model: s.config.EmbeddingModel,
		Input: []string{text},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedding embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedding); err != nil {
		return nil, err
	}

	if embedding.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", embedding.Error.Message)
	}
	if len(embedding.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return embedding.Data[0].Embedding, nil
}

// EncodeVector 向量落库前序列化为 JSON
func EncodeVector(vector []float64) (string, error) {
	data, err := json.Marshal(vector)
	return string(data), err
}
