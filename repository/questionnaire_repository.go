package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/questionnaire-server/models"
)

type QuestionnaireRepository interface {
	Create(ctx context.Context, q *models.Questionnaire) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Questionnaire, error)
	FindWithQuestions(ctx context.Context, id uint) (*models.Questionnaire, error)
	FindOwned(ctx context.Context, id, ownerID uint) (*models.Questionnaire, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) error
}

type questionnaireRepository struct {
	db *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) QuestionnaireRepository {
	return &questionnaireRepository{db: db}
}

// Create ghi khảo sát, câu hỏi và lựa chọn trong cùng một transaction.
// Position của câu hỏi/lựa chọn lấy theo thứ tự trong slice.
func (r *questionnaireRepository) Create(ctx context.Context, q *models.Questionnaire) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}

		for i := range q.Questions {
			question := &q.Questions[i]
			question.QuestionnaireID = q.ID
			question.Position = i
			if err := tx.Omit(clause.Associations).Create(question).Error; err != nil {
				return err
			}

			for j := range question.Options {
				opt := &question.Options[j]
				opt.QuestionID = question.ID
				opt.Position = j
				if err := tx.Create(opt).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ListByOwner: mới nhất trước.
func (r *questionnaireRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Questionnaire, error) {
	var list []models.Questionnaire
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

// FindWithQuestions nạp câu hỏi và lựa chọn theo (position, id).
func (r *questionnaireRepository) FindWithQuestions(ctx context.Context, id uint) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// FindOwned trả về ErrNotFound cả khi khảo sát tồn tại nhưng thuộc người khác.
func (r *questionnaireRepository) FindOwned(ctx context.Context, id, ownerID uint) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&q).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// DeleteOwned xoá bằng một câu DELETE; câu hỏi, lựa chọn, submission và answer bị xoá theo ON DELETE CASCADE.
func (r *questionnaireRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Questionnaire{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
