package model

// Topic 医学主题节点，通过 ParentID 组成层级结构（系统 -> 器官 -> 疾病）
type Topic struct {
	BaseModel
	ParentID        *uint  `gorm:"index" json:"parentId"`
	Name            string `gorm:"size:200;not null;index" json:"name"`
	SystemName      string `gorm:"size:100;index" json:"systemName"` // 身体系统（如 Endocrine、Cardiovascular）
	SourceReference string `gorm:"size:500" json:"sourceReference"`
	Description     string `gorm:"type:text" json:"description"`
}

func (Topic) TableName() string {
	return "topics"
}
