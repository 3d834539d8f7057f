package models

import "time"

type Submission struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionnaireID uint      `gorm:"column:questionnaire_id;not null;index" json:"questionnaire_id"`
	UserID          *uint     `gorm:"column:user_id;index" json:"user_id"` // NULL khi user đã bị xoá
	SubmittedAt     time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`

	Answers []Answer `gorm:"foreignKey:SubmissionID" json:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}
