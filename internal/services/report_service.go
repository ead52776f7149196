package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/repositories"
)

// ReportService builds downloadable reports from the completed interview
// archive.
type ReportService interface {
	ExportInterviewToExcel(ctx context.Context, id string) ([]byte, error)
	ExportInterviewsToCSV(ctx context.Context, filters repositories.InterviewFilters) ([]byte, error)
}

type reportService struct {
	interviews InterviewService
	logger     *slog.Logger
}

func NewReportService(interviews InterviewService, logger *slog.Logger) ReportService {
	return &reportService{
		interviews: interviews,
		logger:     logger,
	}
}

// ===== EXCEL EXPORT =====

// ExportInterviewToExcel renders one interview as a workbook with an
// Overview sheet and a Transcript sheet.
func (s *reportService) ExportInterviewToExcel(ctx context.Context, id string) ([]byte, error) {
	interview, err := s.interviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record, err := interview.Record()
	if err != nil {
		return nil, fmt.Errorf("failed to decode interview %s: %w", id, err)
	}

	f := excelize.NewFile()

	if err := s.writeOverviewSheet(f, record); err != nil {
		return nil, err
	}
	if err := s.writeTranscriptSheet(f, record); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported interview report", "interview_id", id, "answers", len(record.Answers))
	return buf.Bytes(), nil
}

func (s *reportService) writeOverviewSheet(f *excelize.File, record *models.CompletionRecord) error {
	sheetName := "Overview"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Session ID", record.SessionID},
		{"Candidate", displayName(record)},
		{"Job Title", record.Profile.JobTitle},
		{"Company", record.Profile.CompanyName},
		{"Skills", strings.Join(record.Profile.Skills, ", ")},
		{"Total Score", record.TotalScore},
		{"Questions Asked", len(record.Questions)},
		{"Answers Given", len(record.Answers)},
		{"Duration (minutes)", record.Duration / 60},
		{"Started At", record.StartedAt.Format(time.RFC3339)},
		{"Completed At", record.CompletedAt.Format(time.RFC3339)},
		{"Overall Feedback", record.Summary.OverallFeedback},
		{"Strengths", strings.Join(record.Summary.Strengths, "; ")},
		{"Improvements", strings.Join(record.Summary.Improvements, "; ")},
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}

func (s *reportService) writeTranscriptSheet(f *excelize.File, record *models.CompletionRecord) error {
	sheetName := "Transcript"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{
		"#", "Question", "Type", "Follow-Up", "Answer", "Score",
		"Content", "Behavioral", "Voice", "Feedback",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	questionsByID := make(map[string]models.Question, len(record.Questions))
	for _, q := range record.Questions {
		questionsByID[q.ID] = q
	}

	for rowIndex, answer := range record.Answers {
		question := questionsByID[answer.QuestionID]

		row := []interface{}{
			rowIndex + 1,
			question.Question,
			string(question.Type),
			question.IsFollowUp,
			answer.Answer,
			answer.Score,
		}
		if answer.Evaluation != nil {
			row = append(row,
				answer.Evaluation.ContentScore,
				answer.Evaluation.BehavioralScore,
				answer.Evaluation.VoiceScore,
				answer.Evaluation.DetailedFeedback,
			)
		} else {
			row = append(row, "", "", "", "")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}

// ===== CSV EXPORT =====

// ExportInterviewsToCSV renders the filtered archive as a flat CSV listing.
func (s *reportService) ExportInterviewsToCSV(ctx context.Context, filters repositories.InterviewFilters) ([]byte, error) {
	interviews, _, err := s.interviews.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"session_id", "job_title", "user_name", "total_score",
		"duration_seconds", "started_at", "completed_at",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, interview := range interviews {
		row := []string{
			interview.ID,
			interview.JobTitle,
			interview.UserName,
			strconv.Itoa(interview.TotalScore),
			strconv.Itoa(interview.Duration),
			interview.StartedAt.Format(time.RFC3339),
			interview.CompletedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func displayName(record *models.CompletionRecord) string {
	if record.UserName != "" {
		return record.UserName
	}
	return "Candidate"
}
