package dto

// Payload từ client. Định danh người dùng luôn lấy từ token, không bao giờ từ body.

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type QuestionInput struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type CreateQuestionnaireRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId"`
	Text       string `json:"text"`
}

type SubmitRequest struct {
	Answers []AnswerInput `json:"answers"`
}
