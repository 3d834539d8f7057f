package models

import "time"

const (
	QuestionTypeText   = "text"
	QuestionTypeChoice = "choice"
)

type Question struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionnaireID uint      `gorm:"column:questionnaire_id;not null;index" json:"questionnaire_id"`
	Text            string    `gorm:"column:question_text;type:text;not null" json:"text"`
	Type            string    `gorm:"column:question_type;size:20;not null;default:'text'" json:"type"`
	Position        int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// IsChoice: answer của câu hỏi được đếm theo từng lựa chọn.
func (q Question) IsChoice() bool {
	return q.Type == QuestionTypeChoice
}
