package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/studysync/internal/srs"
	"github.com/example/studysync/internal/store"
	"github.com/example/studysync/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ExportConfig defines the export configuration
type ExportConfig struct {
	FilePath      string // Path to the output Excel or CSV file
	MasterySheet  string // Sheet name for the mastery table
	ActivitySheet string // Sheet name for the activity heatmap
}

// DefaultExportConfig returns the default export configuration
func DefaultExportConfig(filePath string) ExportConfig {
	return ExportConfig{
		FilePath:      filePath,
		MasterySheet:  "Mastery",
		ActivitySheet: "Activity",
	}
}

// ExportResult holds the result of an export operation
type ExportResult struct {
	Records  int
	Mastered int
	Days     int
}

// ExportProgress writes the course's mastery table and activity heatmap to an
// Excel or CSV file, chosen by file extension. CSV output carries the mastery
// table only.
func ExportProgress(gateway *store.Gateway, config ExportConfig) (*ExportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	if ext == ".csv" {
		return exportToCSV(gateway, config)
	}

	return exportToExcel(gateway, config)
}

var masteryHeader = []string{"Key", "Label", "Ease Factor", "Interval (days)", "Repetitions", "Next Review", "Last Quality", "Review Count", "Mastered"}

// exportToExcel writes both sheets to an xlsx workbook.
func exportToExcel(gateway *store.Gateway, config ExportConfig) (*ExportResult, error) {
	schedules, err := gateway.Schedules()
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery table: %v", err)
	}
	activity, err := gateway.Activity()
	if err != nil {
		return nil, fmt.Errorf("failed to load activity map: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := config.MasterySheet
	f.SetSheetName("Sheet1", sheet)
	for col, title := range masteryHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	algorithm := srs.NewSM2()
	result := &ExportResult{}

	for i, record := range sortedRecords(schedules) {
		mastered := algorithm.IsMastered(&record)
		if mastered {
			result.Mastered++
		}
		values := []interface{}{
			record.Key,
			record.Label,
			record.EaseFactor,
			record.Interval,
			record.Repetitions,
			record.NextReview.Format(time.RFC3339),
			record.LastQuality.String(),
			record.ReviewCount,
			mastered,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
		result.Records++
	}

	f.NewSheet(config.ActivitySheet)
	f.SetCellValue(config.ActivitySheet, "A1", "Date")
	f.SetCellValue(config.ActivitySheet, "B1", "Reviews")
	for i, day := range sortedDays(activity) {
		f.SetCellValue(config.ActivitySheet, fmt.Sprintf("A%d", i+2), day)
		f.SetCellValue(config.ActivitySheet, fmt.Sprintf("B%d", i+2), activity[day])
		result.Days++
	}

	if err := f.SaveAs(config.FilePath); err != nil {
		return nil, fmt.Errorf("failed to save Excel file: %v", err)
	}
	return result, nil
}

// exportToCSV writes the mastery table as CSV.
func exportToCSV(gateway *store.Gateway, config ExportConfig) (*ExportResult, error) {
	schedules, err := gateway.Schedules()
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery table: %v", err)
	}

	file, err := os.Create(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(masteryHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %v", err)
	}

	algorithm := srs.NewSM2()
	result := &ExportResult{}

	for _, record := range sortedRecords(schedules) {
		mastered := algorithm.IsMastered(&record)
		if mastered {
			result.Mastered++
		}
		row := []string{
			record.Key,
			record.Label,
			fmt.Sprintf("%.2f", record.EaseFactor),
			fmt.Sprintf("%d", record.Interval),
			fmt.Sprintf("%d", record.Repetitions),
			record.NextReview.Format(time.RFC3339),
			record.LastQuality.String(),
			fmt.Sprintf("%d", record.ReviewCount),
			fmt.Sprintf("%t", mastered),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %v", err)
		}
		result.Records++
	}

	return result, nil
}

func sortedRecords(schedules models.ScheduleTable) []models.ScheduleRecord {
	records := make([]models.ScheduleRecord, 0, len(schedules))
	for _, record := range schedules {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records
}

func sortedDays(activity map[string]int) []string {
	days := make([]string, 0, len(activity))
	for day := range activity {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
