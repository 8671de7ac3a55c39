package service

import (
	"med_edu_backend/internal/config"
	"strings"
)

// ChunkSplitter 把抽取出的教材文本按词数窗口切分，相邻片段有重叠
type ChunkSplitter struct {
	Cfg config.IngestionConfig
}

func NewChunkSplitter(cfg config.IngestionConfig) *ChunkSplitter {
	return &ChunkSplitter{Cfg: cfg}
}

// Split 返回的每个片段词数在 [ChunkSizeMin, ChunkSizeMax] 之间
// （末尾不足 ChunkSizeMin 的剩余部分并入前一片段）
func (s *ChunkSplitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxSize := s.Cfg.ChunkSizeMax
	minSize := s.Cfg.ChunkSizeMin
	overlap := s.Cfg.ChunkOverlap
	if maxSize <= 0 {
		maxSize = 700
	}
	if minSize <= 0 || minSize > maxSize {
		minSize = maxSize / 2
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = 0
	}

	if len(words) <= maxSize {
		return []string{strings.Join(words, " ")}
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + maxSize
		if end >= len(words) {
			end = len(words)
		}

		// 末尾片段过短时并入前一个，避免产出无上下文的碎片
		if len(chunks) > 0 && end-start < minSize {
			last := strings.Fields(chunks[len(chunks)-1])
			merged := append(last, words[start:end]...)
			chunks[len(chunks)-1] = strings.Join(merged, " ")
			break
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - overlap
	}

	return chunks
}
