package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/utils"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	exportSheet = "Responses"
)

type ExportService struct {
	questionnaires repository.QuestionnaireRepository
	submissions    repository.SubmissionRepository
}

func NewExportService(questionnaires repository.QuestionnaireRepository, submissions repository.SubmissionRepository) *ExportService {
	return &ExportService{questionnaires: questionnaires, submissions: submissions}
}

// Export xuất mọi lần trả lời thành bảng: một dòng mỗi submission, một cột mỗi câu hỏi.
func (s *ExportService) Export(ctx context.Context, questionnaireID, requesterID uint, format, locale string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, NewInvalidError(utils.MsgExportFormatInvalid)
	}

	q, err := findOwnedWithQuestions(ctx, s.questionnaires, questionnaireID, requesterID)
	if err != nil {
		return nil, err
	}
	views, err := loadSubmissionViews(ctx, s.submissions, questionnaireID, locale)
	if err != nil {
		return nil, err
	}

	header := []string{"submission_id", "username", "submitted_at"}
	column := make(map[uint]int, len(q.Questions))
	for i, question := range q.Questions {
		header = append(header, question.Text)
		column[question.ID] = 3 + i
	}

	table := [][]string{header}
	for _, v := range views {
		row := make([]string, len(header))
		row[0] = strconv.FormatUint(uint64(v.SubmissionID), 10)
		row[1] = v.Username
		row[2] = v.SubmittedAt.UTC().Format(time.RFC3339)
		for _, a := range v.Answers {
			if idx, ok := column[a.QuestionID]; ok {
				row[idx] = a.AnswerText
			}
		}
		table = append(table, row)
	}

	file := &dto.ExportFile{Filename: fmt.Sprintf("questionnaire-%d.%s", questionnaireID, format)}
	switch format {
	case FormatXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Data, err = writeXLSX(table)
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Data, err = writeCSV(table)
	}
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("render %s export: %w", format, err))
	}

	log.Info().
		Uint("questionnaire_id", questionnaireID).
		Str("format", format).
		Int("rows", len(views)).
		Msg("export rendered")
	return file, nil
}

func writeCSV(table [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(table [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
