package models

import "time"

const MaxTitleLen = 255

type Questionnaire struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID     uint      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description string    `gorm:"column:description;type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Owner *User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	// Quan hệ
	Questions   []Question   `gorm:"foreignKey:QuestionnaireID" json:"questions,omitempty"`
	Submissions []Submission `gorm:"foreignKey:QuestionnaireID" json:"-"`
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}
