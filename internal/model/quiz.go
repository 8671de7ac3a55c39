package model

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// QuizQuestion 标准四选一临床题
type QuizQuestion struct {
	BaseModel
	TopicID       uint            `gorm:"not null;index" json:"topicId"`
	Stem          string          `gorm:"type:text;not null" json:"stem"` // 题干/临床案例
	OptionA       string          `gorm:"size:500;not null" json:"optionA"`
	OptionB       string          `gorm:"size:500;not null" json:"optionB"`
	OptionC       string          `gorm:"size:500;not null" json:"optionC"`
	OptionD       string          `gorm:"size:500;not null" json:"optionD"`
	CorrectOption string          `gorm:"size:1;not null" json:"-"` // A/B/C/D
	Explanation   string          `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    DifficultyLevel `gorm:"type:enum('easy','medium','hard');default:'medium';not null" json:"difficulty"`
	SourceChunkID *uint           `json:"sourceChunkId"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAnswer 学生答题记录
type QuizAnswer struct {
	BaseModel
	UserID          uint     `gorm:"not null;index" json:"userId"`
	QuestionID      uint     `gorm:"not null;index" json:"questionId"`
	ChosenOption    string   `gorm:"size:1;not null" json:"chosenOption"`
	Correct         bool     `gorm:"not null" json:"correct"`
	ResponseTimeSec *float64 `json:"responseTimeSec"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
