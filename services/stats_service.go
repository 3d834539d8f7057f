package services

import (
	"context"
	"fmt"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type StatsService struct {
	questionnaires repository.QuestionnaireRepository
	submissions    repository.SubmissionRepository
}

func NewStatsService(questionnaires repository.QuestionnaireRepository, submissions repository.SubmissionRepository) *StatsService {
	return &StatsService{questionnaires: questionnaires, submissions: submissions}
}

// Compute trả về thống kê theo thứ tự câu hỏi. Chỉ owner được xem.
func (s *StatsService) Compute(ctx context.Context, questionnaireID, requesterID uint) ([]dto.QuestionStats, error) {
	q, err := findOwnedWithQuestions(ctx, s.questionnaires, questionnaireID, requesterID)
	if err != nil {
		return nil, err
	}

	tallies, err := s.submissions.CountAnswerTexts(ctx, questionnaireID)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("count answers: %w", err))
	}
	return aggregateStats(q.Questions, tallies), nil
}

// aggregateStats gộp số đếm (question_id, answer_text) thành thống kê từng câu hỏi.
// Answer không khớp lựa chọn nào vẫn được tính vào TotalAnswers.
func aggregateStats(questions []models.Question, tallies []repository.AnswerTally) []dto.QuestionStats {
	totals := make(map[uint]int64)
	byText := make(map[uint]map[string]int64)
	for _, t := range tallies {
		totals[t.QuestionID] += t.Count
		if byText[t.QuestionID] == nil {
			byText[t.QuestionID] = make(map[string]int64)
		}
		byText[t.QuestionID][t.AnswerText] += t.Count
	}

	stats := make([]dto.QuestionStats, 0, len(questions))
	for _, q := range questions {
		st := dto.QuestionStats{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Type:         q.Type,
			TotalAnswers: totals[q.ID],
		}
		if q.IsChoice() {
			st.Options = make([]dto.OptionStats, 0, len(q.Options))
			for _, opt := range q.Options {
				st.Options = append(st.Options, dto.OptionStats{
					OptionID:   opt.ID,
					OptionText: opt.Text,
					Count:      byText[q.ID][opt.Text],
				})
			}
		}
		stats = append(stats, st)
	}
	return stats
}
