package model

// Chunk 教材切分片段，每个片段归属一个主题，并可带向量表示
type Chunk struct {
	BaseModel
	TopicID       uint   `gorm:"not null;index" json:"topicId"`
	PageStart     *int   `json:"pageStart"`
	PageEnd       *int   `json:"pageEnd"`
	Text          string `gorm:"type:text;not null" json:"text"`
	Embedding     string `gorm:"type:longtext" json:"-"` // JSON 编码的向量
	SourcePDFPath string `gorm:"size:500" json:"sourcePdfPath"`
	Metadata      string `gorm:"type:text" json:"metadata"` // JSON 字符串
}

func (Chunk) TableName() string {
	return "chunks"
}
