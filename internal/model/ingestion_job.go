package model

import "time"

type IngestionStatus string

const (
	IngestionQueued  IngestionStatus = "queued"
	IngestionRunning IngestionStatus = "running"
	IngestionDone    IngestionStatus = "done"
	IngestionError   IngestionStatus = "error"
)

// IngestionJob PDF 导入任务，前端通过 JobID 轮询状态
// 状态流转: queued -> running -> done/error
type IngestionJob struct {
	BaseModel
	JobID        string          `gorm:"size:50;uniqueIndex;not null" json:"jobId"`
	UserID       uint            `gorm:"not null;index" json:"userId"`
	TopicID      uint            `gorm:"not null;index" json:"topicId"`
	Status       IngestionStatus `gorm:"type:enum('queued','running','done','error');default:'queued';index" json:"status"`
	PDFFilename  string          `gorm:"size:500" json:"pdfFilename"`
	ChunkCount   *int            `json:"chunkCount"`
	ErrorMessage string          `gorm:"type:text" json:"errorMessage,omitempty"`
	FinishedAt   *time.Time      `json:"finishedAt"`
}

func (IngestionJob) TableName() string {
	return "ingestion_jobs"
}
