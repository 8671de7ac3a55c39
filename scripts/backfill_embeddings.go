// 手动回填教材片段向量脚本
//
// 导入流水线在向量服务不可用时会先落库纯文本片段。
// 此脚本扫描缺少向量的片段并重新生成，例如向量服务恢复后执行。
//
// 用法: go run scripts/backfill_embeddings.go

package main

import (
	"log"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/service"
	"med_edu_backend/pkg/database"
	"med_edu_backend/pkg/logger"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	embedding := service.NewEmbeddingService(cfg.AI)

	var chunks []model.Chunk
	if err := db.Where("embedding = '' OR embedding IS NULL").Find(&chunks).Error; err != nil {
		log.Fatalf("查询缺失向量的片段失败: %v", err)
	}

	log.Printf("待回填片段数: %d", len(chunks))

	filled := 0
	for i := range chunks {
		vector, err := embedding.CreateEmbedding(chunks[i].Text)
		if err != nil {
			log.Printf("片段 %d 向量生成失败: %v", chunks[i].ID, err)
			continue
		}

		encoded, err := service.EncodeVector(vector)
		if err != nil {
			log.Printf("片段 %d 向量编码失败: %v", chunks[i].ID, err)
			continue
		}

		if err := db.Model(&model.Chunk{}).Where("id = ?", chunks[i].ID).
			Update("embedding", encoded).Error; err != nil {
			log.Printf("片段 %d 写回失败: %v", chunks[i].ID, err)
			continue
		}
		filled++
	}

	log.Printf("回填完成: %d/%d", filled, len(chunks))
}
