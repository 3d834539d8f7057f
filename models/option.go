package models

import "time"

type Option struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	Text       string    `gorm:"column:option_text;type:text;not null" json:"text"`
	Position   int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Option) TableName() string {
	return "options"
}
