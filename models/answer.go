package models

import "time"

type Answer struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionnaireID uint      `gorm:"column:questionnaire_id;not null;index" json:"questionnaire_id"`
	QuestionID      uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	UserID          *uint     `gorm:"column:user_id;index" json:"user_id"`
	SubmissionID    uint      `gorm:"column:submission_id;not null;index" json:"submission_id"`
	Text            string    `gorm:"column:answer_text;type:text;not null" json:"text"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Answer) TableName() string {
	return "answers"
}
