package dto

import "time"

type UserPublic struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// AuthResult là kết quả register/login: token kèm thông tin công khai của user.
type AuthResult struct {
	Token string     `json:"token"`
	User  UserPublic `json:"user"`
}

type QuestionnaireSummary struct {
	ID          uint      `json:"id"`
	OwnerID     uint      `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OptionView struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

type QuestionView struct {
	ID       uint         `json:"id"`
	Text     string       `json:"text"`
	Type     string       `json:"type"`
	Position int          `json:"position"`
	Options  []OptionView `json:"options"`
}

type QuestionnaireDetail struct {
	ID          uint           `json:"id"`
	OwnerID     uint           `json:"ownerId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	Questions   []QuestionView `json:"questions"`
}

type AnswerView struct {
	QuestionID   uint   `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

type SubmissionView struct {
	SubmissionID uint         `json:"submissionId"`
	Username     string       `json:"username"`
	SubmittedAt  time.Time    `json:"submittedAt"`
	Answers      []AnswerView `json:"answers"`
}

type AnsweredQuestionnaire struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorName string    `json:"creatorName"`
	CreatedAt   time.Time `json:"createdAt"`
	AnsweredAt  time.Time `json:"answeredAt"`
}

type OptionStats struct {
	OptionID   uint   `json:"optionId"`
	OptionText string `json:"optionText"`
	Count      int64  `json:"count"`
}

// QuestionStats: Options chỉ có với câu hỏi dạng choice.
type QuestionStats struct {
	QuestionID   uint          `json:"questionId"`
	QuestionText string        `json:"questionText"`
	Type         string        `json:"type"`
	TotalAnswers int64         `json:"totalAnswers"`
	Options      []OptionStats `json:"options,omitempty"`
}

// ExportFile là file đã render xong, controller chỉ việc trả về.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
