package service

import (
	"fmt"
	"med_edu_backend/internal/config"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplitEmpty(t *testing.T) {
	s := NewChunkSplitter(config.IngestionConfig{ChunkSizeMin: 4, ChunkSizeMax: 10, ChunkOverlap: 2})

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\t  "))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewChunkSplitter(config.IngestionConfig{ChunkSizeMin: 4, ChunkSizeMax: 10, ChunkOverlap: 2})

	chunks := s.Split(wordsText(6))

	require.Len(t, chunks, 1)
	assert.Len(t, strings.Fields(chunks[0]), 6)
}

func TestSplitWithOverlap(t *testing.T) {
	s := NewChunkSplitter(config.IngestionConfig{ChunkSizeMin: 4, ChunkSizeMax: 10, ChunkOverlap: 2})

	chunks := s.Split(wordsText(25))

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		n := len(strings.Fields(c))
		assert.GreaterOrEqual(t, n, 4)
		assert.LessOrEqual(t, n, 10)
	}

	// 相邻片段重叠两个词
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[len(first)-2:], second[:2])

	// 所有词都被覆盖
	last := strings.Fields(chunks[2])
	assert.Equal(t, "w24", last[len(last)-1])
}

func TestSplitMergesShortTail(t *testing.T) {
	s := NewChunkSplitter(config.IngestionConfig{ChunkSizeMin: 6, ChunkSizeMax: 10, ChunkOverlap: 2})

	// 末尾剩 5 个词，低于下限，应并入前一片段
	chunks := s.Split(wordsText(21))

	require.Len(t, chunks, 2)
	last := strings.Fields(chunks[1])
	assert.Equal(t, "w20", last[len(last)-1])
	assert.Greater(t, len(last), 10)
}

func TestSplitDefaultsWhenConfigMissing(t *testing.T) {
	s := NewChunkSplitter(config.IngestionConfig{})

	chunks := s.Split(wordsText(1500))

	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0]), 700)

	// 末段不足下限时并入前一片段，最后一个词仍被覆盖
	last := strings.Fields(chunks[1])
	assert.Equal(t, "w1499", last[len(last)-1])
}
