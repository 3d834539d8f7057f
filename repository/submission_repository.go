package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/questionnaire-server/models"
)

// SubmissionRow là một lần nộp kèm username (nil khi user đã bị xoá).
type SubmissionRow struct {
	ID          uint
	Username    *string
	SubmittedAt time.Time
}

type AnswerRow struct {
	SubmissionID uint
	QuestionID   uint
	QuestionText string
	AnswerText   string
	Position     int
}

type AnsweredRow struct {
	ID          uint
	Title       string
	Description string
	CreatorName string
	CreatedAt   time.Time
	AnsweredAt  time.Time
}

// AnswerTally: số answer có cùng nội dung cho một câu hỏi.
type AnswerTally struct {
	QuestionID uint
	AnswerText string
	Count      int64
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	ListByQuestionnaire(ctx context.Context, questionnaireID uint) ([]SubmissionRow, error)
	ListAnswers(ctx context.Context, submissionIDs []uint) ([]AnswerRow, error)
	ListAnsweredBy(ctx context.Context, userID uint) ([]AnsweredRow, error)
	CountAnswerTexts(ctx context.Context, questionnaireID uint) ([]AnswerTally, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create ghi submission và toàn bộ answer trong một transaction; lỗi ở bất kỳ answer nào sẽ rollback tất cả.
func (r *submissionRepository) Create(ctx context.Context, s *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.SubmittedAt.IsZero() {
			s.SubmittedAt = time.Now().UTC()
		}
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}

		for i := range s.Answers {
			a := &s.Answers[i]
			a.SubmissionID = s.ID
			a.QuestionnaireID = s.QuestionnaireID
			a.UserID = s.UserID
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *submissionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID uint) ([]SubmissionRow, error) {
	var rows []SubmissionRow
	err := r.db.WithContext(ctx).
		Table("submissions AS s").
		Select("s.id AS id, u.username AS username, s.submitted_at AS submitted_at").
		Joins("LEFT JOIN users u ON u.id = s.user_id").
		Where("s.questionnaire_id = ?", questionnaireID).
		Order("s.submitted_at DESC").Order("s.id DESC").
		Scan(&rows).Error
	return rows, err
}

// ListAnswers nạp answer của nhiều submission bằng một query (tránh N+1).
func (r *submissionRepository) ListAnswers(ctx context.Context, submissionIDs []uint) ([]AnswerRow, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var rows []AnswerRow
	err := r.db.WithContext(ctx).
		Table("answers AS a").
		Select("a.submission_id AS submission_id, a.question_id AS question_id, q.question_text AS question_text, a.answer_text AS answer_text, q.position AS position").
		Joins("JOIN questions q ON q.id = a.question_id").
		Where("a.submission_id IN ?", submissionIDs).
		Order("a.submission_id").Order("q.position").Order("q.id").
		Scan(&rows).Error
	return rows, err
}

// ListAnsweredBy: mỗi khảo sát một dòng, kèm tên người tạo và lần trả lời gần nhất.
func (r *submissionRepository) ListAnsweredBy(ctx context.Context, userID uint) ([]AnsweredRow, error) {
	var rows []AnsweredRow
	err := r.db.WithContext(ctx).
		Table("questionnaires AS q").
		Select("q.id AS id, q.title AS title, q.description AS description, u.username AS creator_name, q.created_at AS created_at, MAX(s.submitted_at) AS answered_at").
		Joins("JOIN submissions s ON s.questionnaire_id = q.id").
		Joins("JOIN users u ON u.id = q.owner_id").
		Where("s.user_id = ?", userID).
		Group("q.id, q.title, q.description, u.username, q.created_at").
		Order("answered_at DESC").Order("q.id DESC").
		Scan(&rows).Error
	return rows, err
}

// CountAnswerTexts đếm trong SQL; so khớp nội dung chính xác, phân biệt hoa thường.
func (r *submissionRepository) CountAnswerTexts(ctx context.Context, questionnaireID uint) ([]AnswerTally, error) {
	var rows []AnswerTally
	err := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("question_id, answer_text, COUNT(*) AS count").
		Where("questionnaire_id = ?", questionnaireID).
		Group("question_id, answer_text").
		Scan(&rows).Error
	return rows, err
}
