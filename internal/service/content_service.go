package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"med_edu_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 总结缓存有效期
const summaryCacheTTL = time.Hour

// 生成总结/题目时送入 LLM 的片段上限
const summaryChunkLimit = 10

// CitationInfo 总结引用的来源片段
type CitationInfo struct {
	SourceReference string `json:"sourceReference"`
	ChunkID         uint   `json:"chunkId"`
}

// TopicSummary 主题总结响应
type TopicSummary struct {
	TopicID        uint            `json:"topicId"`
	TopicName      string          `json:"topicName"`
	Summary        string          `json:"summary"`
	KeyPoints      []string        `json:"keyPoints"`
	HighYieldTraps []HighYieldTrap `json:"highYieldTraps"`
	ChunkCount     int             `json:"chunkCount"`
	Citations      []CitationInfo  `json:"citations"`
}

// SearchResult 语义检索命中项
type SearchResult struct {
	ChunkID    uint    `json:"chunkId"`
	TopicID    uint    `json:"topicId"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// SearchResponse 语义检索响应
type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
}

// ContentService 主题与教材内容管理
type ContentService struct {
	TopicRepo *repository.TopicRepository
	ChunkRepo *repository.ChunkRepository
	JobRepo   *repository.IngestionJobRepository
	LLM       *LLMService
	Embedding *EmbeddingService
	Splitter  *ChunkSplitter
	Storage   *StorageService
	Extractor TextExtractor
	Redis     *redis.Client
	Cfg       *config.Config
}

func NewContentService(
	topicRepo *repository.TopicRepository,
	chunkRepo *repository.ChunkRepository,
	jobRepo *repository.IngestionJobRepository,
	llm *LLMService,
	embedding *EmbeddingService,
	storage *StorageService,
	rdb *redis.Client,
	cfg *config.Config,
) *ContentService {
	return &ContentService{
		TopicRepo: topicRepo,
		ChunkRepo: chunkRepo,
		JobRepo:   jobRepo,
		LLM:       llm,
		Embedding: embedding,
		Splitter:  NewChunkSplitter(cfg.Ingestion),
		Storage:   storage,
		Extractor: PlainTextExtractor{},
		Redis:     rdb,
		Cfg:       cfg,
	}
}

func (s *ContentService) CreateTopic(topic *model.Topic) error {
	// 父引用只校验非自指，层级深度不限
	if topic.ParentID != nil && topic.ID != 0 && *topic.ParentID == topic.ID {
		return errors.New("topic cannot be its own parent")
	}
	if err := s.TopicRepo.Create(topic); err != nil {
		return err
	}

	logger.Log.Info("Created topic", zap.Uint("topicID", topic.ID), zap.String("name", topic.Name))
	return nil
}

func (s *ContentService) GetTopic(id uint) (*model.Topic, error) {
	topic, err := s.TopicRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	return topic, err
}

func (s *ContentService) ListTopics(systemName string, parentID *uint) ([]model.Topic, error) {
	return s.TopicRepo.List(systemName, parentID)
}

// GetTopicSummary 生成（或读缓存）主题总结
// LLM 只看该主题已导入的片段，附带引用信息
func (s *ContentService) GetTopicSummary(ctx context.Context, topicID uint, includeHighYield bool) (*TopicSummary, error) {
	cacheKey := fmt.Sprintf("summary:topic:%d:%t", topicID, includeHighYield)
	if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var summary TopicSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	topic, err := s.GetTopic(topicID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.ChunkRepo.FindByTopicID(topicID, summaryChunkLimit)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, util.ErrNoContentForTopic
	}

	var combined string
	for i, c := range chunks {
		if i > 0 {
			combined += "\n\n"
		}
		combined += c.Text
	}

	generated, err := s.LLM.GenerateSummary(topic.Name, combined, includeHighYield)
	if err != nil {
		return nil, err
	}

	total, err := s.ChunkRepo.CountByTopicID(topicID)
	if err != nil {
		return nil, err
	}

	summary := &TopicSummary{
		TopicID:        topicID,
		TopicName:      topic.Name,
		Summary:        generated.Summary,
		KeyPoints:      generated.KeyPoints,
		HighYieldTraps: generated.HighYieldTraps,
		ChunkCount:     int(total),
		Citations:      buildCitations(chunks),
	}
	if !includeHighYield {
		summary.HighYieldTraps = []HighYieldTrap{}
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.Redis.Set(ctx, cacheKey, data, summaryCacheTTL).Err(); err != nil {
			logger.Log.Warn("Failed to cache topic summary", zap.Uint("topicID", topicID), zap.Error(err))
		}
	}

	return summary, nil
}

// SearchContent 语义检索
// 查询向量正常生成，但相似度检索尚未实现，返回空结果
func (s *ContentService) SearchContent(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if _, err := s.Embedding.CreateEmbedding(query); err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	// TODO: 基于存储向量的相似度排序，等待向量索引方案落地
	logger.Log.Warn("Vector search not yet implemented", zap.String("query", query))

	return &SearchResponse{
		Query:        query,
		Results:      []SearchResult{},
		TotalResults: 0,
	}, nil
}

// StartIngestion 创建导入任务并异步执行流水线
func (s *ContentService) StartIngestion(userID, topicID uint, filename string) (*model.IngestionJob, error) {
	if _, err := s.GetTopic(topicID); err != nil {
		return nil, err
	}

	job := &model.IngestionJob{
		JobID:       model.GenerateUUID(),
		UserID:      userID,
		TopicID:     topicID,
		Status:      model.IngestionQueued,
		PDFFilename: filename,
	}
	if err := s.JobRepo.Create(job); err != nil {
		return nil, err
	}

	go s.runIngestion(job.JobID, topicID, filename)

	logger.Log.Info("Queued ingestion job",
		zap.String("jobID", job.JobID),
		zap.Uint("topicID", topicID),
		zap.String("filename", filename))
	return job, nil
}

// runIngestion 导入流水线：抽取文本 -> 切分 -> 逐片段生成向量 -> 落库
// 单个片段的向量生成失败不会中断整个任务
func (s *ContentService) runIngestion(jobID string, topicID uint, filename string) {
	ctx := context.Background()

	if err := s.JobRepo.MarkRunning(jobID); err != nil {
		logger.Log.Error("Failed to mark ingestion running", zap.String("jobID", jobID), zap.Error(err))
		return
	}

	fail := func(err error) {
		logger.Log.Error("Ingestion job failed", zap.String("jobID", jobID), zap.Error(err))
		monitoring.IngestionJobs.WithLabelValues(string(model.IngestionError)).Inc()
		if markErr := s.JobRepo.MarkError(jobID, err.Error()); markErr != nil {
			logger.Log.Error("Failed to mark ingestion error", zap.String("jobID", jobID), zap.Error(markErr))
		}
	}

	reader, err := s.Storage.Provider.Open(ctx, "pdfs/"+filename)
	if err != nil {
		fail(fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer reader.Close()

	text, err := s.Extractor.Extract(reader)
	if err != nil {
		fail(fmt.Errorf("failed to extract text: %w", err))
		return
	}

	pieces := s.Splitter.Split(text)
	if len(pieces) == 0 {
		fail(errors.New("no text content extracted"))
		return
	}

	chunks := make([]model.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunk := model.Chunk{
			TopicID:       topicID,
			Text:          piece,
			SourcePDFPath: filename,
		}

		vector, err := s.Embedding.CreateEmbedding(piece)
		if err != nil {
			logger.Log.Warn("Failed to embed chunk, storing without vector",
				zap.String("jobID", jobID), zap.Error(err))
		} else if encoded, err := EncodeVector(vector); err == nil {
			chunk.Embedding = encoded
		}

		chunks = append(chunks, chunk)
	}

	if err := s.ChunkRepo.CreateBatch(chunks); err != nil {
		fail(fmt.Errorf("failed to store chunks: %w", err))
		return
	}

	if err := s.JobRepo.MarkDone(jobID, len(chunks)); err != nil {
		logger.Log.Error("Failed to mark ingestion done", zap.String("jobID", jobID), zap.Error(err))
		return
	}
	monitoring.IngestionJobs.WithLabelValues(string(model.IngestionDone)).Inc()

	logger.Log.Info("Ingestion job completed",
		zap.String("jobID", jobID),
		zap.Int("chunks", len(chunks)))
}

func (s *ContentService) GetIngestionStatus(jobID string) (*model.IngestionJob, error) {
	job, err := s.JobRepo.FindByJobID(jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrJobNotFound
	}
	return job, err
}

func buildCitations(chunks []model.Chunk) []CitationInfo {
	citations := make([]CitationInfo, 0, len(chunks))
	seen := make(map[string]bool)

	for _, c := range chunks {
		ref := c.SourcePDFPath
		if ref == "" {
			ref = "Unknown source"
		}
		if c.PageStart != nil {
			ref += fmt.Sprintf(" p.%d", *c.PageStart)
			if c.PageEnd != nil && *c.PageEnd != *c.PageStart {
				ref += fmt.Sprintf("-%d", *c.PageEnd)
			}
		}

		key := fmt.Sprintf("%s#%d", ref, c.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, CitationInfo{SourceReference: ref, ChunkID: c.ID})
	}
	return citations
}
