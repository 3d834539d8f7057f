package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/metrics"
	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type QuestionnaireService struct {
	questionnaires repository.QuestionnaireRepository
	users          repository.UserRepository
}

func NewQuestionnaireService(questionnaires repository.QuestionnaireRepository, users repository.UserRepository) *QuestionnaireService {
	return &QuestionnaireService{questionnaires: questionnaires, users: users}
}

// Create kiểm tra payload, xác nhận owner còn tồn tại rồi ghi toàn bộ khảo sát trong một transaction.
func (s *QuestionnaireService) Create(ctx context.Context, ownerID uint, req dto.CreateQuestionnaireRequest) (uint, error) {
	q, err := buildQuestionnaire(ownerID, req)
	if err != nil {
		return 0, err
	}

	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, NewUnauthorizedError(utils.MsgUserStale)
		}
		return 0, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("find owner: %w", err))
	}

	if err := s.questionnaires.Create(ctx, q); err != nil {
		// owner bị xoá giữa lúc kiểm tra và lúc insert
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return 0, NewUnauthorizedError(utils.MsgUserStale)
		}
		return 0, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("create questionnaire: %w", err))
	}

	metrics.QuestionnairesCreated.Inc()
	log.Info().
		Uint("questionnaire_id", q.ID).
		Uint("owner_id", ownerID).
		Int("questions", len(q.Questions)).
		Msg("questionnaire created")
	return q.ID, nil
}

func buildQuestionnaire(ownerID uint, req dto.CreateQuestionnaireRequest) (*models.Questionnaire, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(req.Questions) == 0 {
		return nil, NewInvalidError(utils.MsgQuestionnaireInvalid)
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLen {
		return nil, NewInvalidError(utils.MsgTitleTooLong)
	}

	q := &models.Questionnaire{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}

	for _, in := range req.Questions {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, NewInvalidError(utils.MsgQuestionnaireInvalid)
		}

		typ := strings.ToLower(strings.TrimSpace(in.Type))
		if typ == "" {
			typ = models.QuestionTypeText
		}

		question := models.Question{Text: text, Type: typ}
		switch typ {
		case models.QuestionTypeText:
			// lựa chọn gửi kèm câu hỏi text bị bỏ qua
		case models.QuestionTypeChoice:
			for _, opt := range in.Options {
				if o := strings.TrimSpace(opt); o != "" {
					question.Options = append(question.Options, models.Option{Text: o})
				}
			}
			if len(question.Options) == 0 {
				return nil, NewInvalidError(utils.MsgQuestionnaireInvalid)
			}
		default:
			return nil, NewInvalidError(utils.MsgQuestionnaireInvalid)
		}
		q.Questions = append(q.Questions, question)
	}
	return q, nil
}

func (s *QuestionnaireService) ListByOwner(ctx context.Context, ownerID uint) ([]dto.QuestionnaireSummary, error) {
	list, err := s.questionnaires.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("list questionnaires: %w", err))
	}

	resp := make([]dto.QuestionnaireSummary, 0, len(list))
	if err := copier.Copy(&resp, &list); err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, err)
	}
	return resp, nil
}

// Get không kiểm tra owner: link chia sẻ là public.
func (s *QuestionnaireService) Get(ctx context.Context, id uint) (*dto.QuestionnaireDetail, error) {
	q, err := s.questionnaires.FindWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError(utils.MsgQuestionnaireNotFound)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("get questionnaire %d: %w", id, err))
	}
	return toDetail(q)
}

func toDetail(q *models.Questionnaire) (*dto.QuestionnaireDetail, error) {
	var detail dto.QuestionnaireDetail
	head := *q
	head.Questions = nil
	if err := copier.Copy(&detail, &head); err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, err)
	}

	detail.Questions = make([]dto.QuestionView, len(q.Questions))
	for i, question := range q.Questions {
		view := &detail.Questions[i]
		view.ID = question.ID
		view.Text = question.Text
		view.Type = question.Type
		view.Position = question.Position
		view.Options = make([]dto.OptionView, 0, len(question.Options))
		if err := copier.Copy(&view.Options, &question.Options); err != nil {
			return nil, NewPersistenceError(utils.MsgInternalError, err)
		}
	}
	return &detail, nil
}

// Delete: khảo sát không tồn tại và khảo sát của người khác đều trả về not found.
func (s *QuestionnaireService) Delete(ctx context.Context, id, ownerID uint) error {
	if err := s.questionnaires.DeleteOwned(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError(utils.MsgQuestionnaireNotFound)
		}
		return NewPersistenceError(utils.MsgInternalError, fmt.Errorf("delete questionnaire %d: %w", id, err))
	}

	metrics.QuestionnairesDeleted.Inc()
	log.Info().Uint("questionnaire_id", id).Uint("owner_id", ownerID).Msg("questionnaire deleted")
	return nil
}

// findOwnedWithQuestions dùng chung cho thống kê và export.
func findOwnedWithQuestions(ctx context.Context, repo repository.QuestionnaireRepository, id, requesterID uint) (*models.Questionnaire, error) {
	q, err := repo.FindWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError(utils.MsgQuestionnaireNotFound)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("get questionnaire %d: %w", id, err))
	}
	if q.OwnerID != requesterID {
		return nil, NewNotFoundError(utils.MsgQuestionnaireNotFound)
	}
	return q, nil
}
