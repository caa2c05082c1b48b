package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

type exportService struct {
	summaries SummaryService
	logger    *slog.Logger
}

func NewExportService(summaries SummaryService, logger *slog.Logger) ExportService {
	return &exportService{
		summaries: summaries,
		logger:    logger,
	}
}

// ExportUserResults renders the student's rollup as an XLSX workbook with a
// sheet per level: exercises, modules, categories.
func (s *exportService) ExportUserResults(ctx context.Context, instanceID, userID uint) ([]byte, error) {
	summary, err := s.summaries.GetUserCourseSummary(ctx, instanceID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	if err := s.writeExerciseSheet(f, summary); err != nil {
		return nil, err
	}
	if err := s.writeModuleSheet(f, summary); err != nil {
		return nil, err
	}
	if err := s.writeCategorySheet(f, summary); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Results exported",
		"instance_id", instanceID,
		"user_id", userID,
		"exercise_count", summary.ExerciseCount)
	return buf.Bytes(), nil
}

func (s *exportService) writeExerciseSheet(f *excelize.File, summary *UserCourseSummary) error {
	sheetName := "Exercises"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Module", "Exercise", "Max Points", "Points to Pass", "Grade",
		"Submissions", "Passed",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, module := range summary.Modules {
		for _, exercise := range module.Exercises {
			row := []interface{}{
				module.Name, exercise.Name, exercise.MaxPoints, exercise.PointsToPass,
				exercise.Grade, exercise.SubmissionCount, exercise.Passed,
			}
			for colIndex, value := range row {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIndex++
		}
	}
	return nil
}

func (s *exportService) writeModuleSheet(f *excelize.File, summary *UserCourseSummary) error {
	sheetName := "Modules"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{
		"Module", "Exercises", "Max Points", "Total Points", "Points to Pass",
		"Completed %", "Required %", "Passed",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, module := range summary.Modules {
		row := []interface{}{
			module.Name, module.ExerciseCount, module.MaxPoints, module.TotalPoints,
			module.PointsToPass, module.CompletedPercentage, module.RequiredPercentage,
			module.Passed,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *exportService) writeCategorySheet(f *excelize.File, summary *UserCourseSummary) error {
	sheetName := "Categories"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{
		"Category", "Exercises", "Max Points", "Total Points", "Points to Pass",
		"Completed %", "Required %", "Passed",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, category := range summary.Categories {
		row := []interface{}{
			category.Name, category.ExerciseCount, category.MaxPoints, category.TotalPoints,
			category.PointsToPass, category.CompletedPercentage, category.RequiredPercentage,
			category.Passed,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}
