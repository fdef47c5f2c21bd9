package service

import (
	"fmt"

	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const attemptSheet = "Attempts"

var attemptHeaders = []string{
	"Client ID", "User Email", "Quiz", "Score", "Total", "Raw Score", "Raw Total",
	"Time Spent (s)", "Time", "Duration", "Submitted At",
}

type ExportService struct {
	Attempts *repository.AttemptRepository
}

func NewExportService(attempts *repository.AttemptRepository) *ExportService {
	return &ExportService{Attempts: attempts}
}

// ExportAttempts 导出作答记录为 xlsx，email 为空时导出全部
func (s *ExportService) ExportAttempts(email string) ([]byte, error) {
	attempts, err := s.Attempts.FindAll(NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attemptSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range attemptHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(attemptSheet, cell, header)
	}

	for rowIndex, a := range attempts {
		row := []interface{}{
			a.ClientID, a.UserEmail, a.QuizTitle, a.Score, a.Total, a.RawScore, a.RawTotal,
			a.TimeSpent, a.TimeText, a.DurationText, a.CreatedAt.Format(util.TimeFormat),
		}
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(attemptSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
