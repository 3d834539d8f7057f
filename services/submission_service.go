package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/metrics"
	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/utils"
)

// Lý do từ chối, dùng làm label cho metrics.SubmissionsRejected.
const (
	rejectCountMismatch   = "count_mismatch"
	rejectUnknownQuestion = "unknown_question"
	rejectDuplicate       = "duplicate_question"
)

type SubmissionService struct {
	questionnaires repository.QuestionnaireRepository
	submissions    repository.SubmissionRepository
	now            func() time.Time
}

func NewSubmissionService(questionnaires repository.QuestionnaireRepository, submissions repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{
		questionnaires: questionnaires,
		submissions:    submissions,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit ghi một lần trả lời. Mỗi câu hỏi của khảo sát phải có đúng một answer.
func (s *SubmissionService) Submit(ctx context.Context, questionnaireID, userID uint, req dto.SubmitRequest) (uint, error) {
	q, err := s.questionnaires.FindWithQuestions(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, NewNotFoundError(utils.MsgQuestionnaireNotFound)
		}
		return 0, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("get questionnaire %d: %w", questionnaireID, err))
	}

	if len(req.Answers) != len(q.Questions) {
		metrics.SubmissionsRejected.WithLabelValues(rejectCountMismatch).Inc()
		return 0, NewInvalidError(utils.MsgSubmissionCountInvalid)
	}
	if reason := checkAnswerTargets(q.Questions, req.Answers); reason != "" {
		metrics.SubmissionsRejected.WithLabelValues(reason).Inc()
		return 0, NewInvalidError(utils.MsgSubmissionQuestionBad)
	}

	uid := userID
	sub := &models.Submission{
		QuestionnaireID: questionnaireID,
		UserID:          &uid,
		SubmittedAt:     s.now(),
		Answers:         make([]models.Answer, 0, len(req.Answers)),
	}
	for _, a := range req.Answers {
		sub.Answers = append(sub.Answers, models.Answer{QuestionID: a.QuestionID, Text: a.Text})
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return 0, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("create submission: %w", err))
	}

	metrics.SubmissionsRecorded.Inc()
	log.Info().
		Uint("submission_id", sub.ID).
		Uint("questionnaire_id", questionnaireID).
		Uint("user_id", userID).
		Msg("submission recorded")
	return sub.ID, nil
}

// checkAnswerTargets trả về lý do từ chối, hoặc "" nếu mọi answer trỏ tới một câu hỏi khác nhau của khảo sát.
func checkAnswerTargets(questions []models.Question, answers []dto.AnswerInput) string {
	valid := make(map[uint]struct{}, len(questions))
	for _, q := range questions {
		valid[q.ID] = struct{}{}
	}

	seen := make(map[uint]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := valid[a.QuestionID]; !ok {
			return rejectUnknownQuestion
		}
		if _, dup := seen[a.QuestionID]; dup {
			return rejectDuplicate
		}
		seen[a.QuestionID] = struct{}{}
	}
	return ""
}

// ListWithAnswers chỉ dành cho owner; người khác nhận not found như khảo sát không tồn tại.
func (s *SubmissionService) ListWithAnswers(ctx context.Context, questionnaireID, requesterID uint, locale string) ([]dto.SubmissionView, error) {
	if _, err := s.questionnaires.FindOwned(ctx, questionnaireID, requesterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError(utils.MsgQuestionnaireNotFound)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("get questionnaire %d: %w", questionnaireID, err))
	}
	return loadSubmissionViews(ctx, s.submissions, questionnaireID, locale)
}

// loadSubmissionViews: hai query, một cho submission và một cho toàn bộ answer.
func loadSubmissionViews(ctx context.Context, repo repository.SubmissionRepository, questionnaireID uint, locale string) ([]dto.SubmissionView, error) {
	rows, err := repo.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("list submissions: %w", err))
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	answers, err := repo.ListAnswers(ctx, ids)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("list answers: %w", err))
	}

	bySubmission := make(map[uint][]dto.AnswerView, len(rows))
	for _, a := range answers {
		bySubmission[a.SubmissionID] = append(bySubmission[a.SubmissionID], dto.AnswerView{
			QuestionID:   a.QuestionID,
			QuestionText: a.QuestionText,
			AnswerText:   a.AnswerText,
		})
	}

	anonymous := utils.T(locale, utils.MsgAnonymous)
	views := make([]dto.SubmissionView, 0, len(rows))
	for _, r := range rows {
		username := anonymous
		if r.Username != nil {
			username = *r.Username
		}
		list := bySubmission[r.ID]
		if list == nil {
			list = []dto.AnswerView{}
		}
		views = append(views, dto.SubmissionView{
			SubmissionID: r.ID,
			Username:     username,
			SubmittedAt:  r.SubmittedAt,
			Answers:      list,
		})
	}
	return views, nil
}

func (s *SubmissionService) ListAnsweredBy(ctx context.Context, userID uint) ([]dto.AnsweredQuestionnaire, error) {
	rows, err := s.submissions.ListAnsweredBy(ctx, userID)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("list answered questionnaires: %w", err))
	}

	resp := make([]dto.AnsweredQuestionnaire, 0, len(rows))
	if err := copier.Copy(&resp, &rows); err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, err)
	}
	return resp, nil
}
