package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/studysync/internal/store"
	"github.com/example/studysync/pkg/models"
	"github.com/xuri/excelize/v2"
)

func setupExportData(t *testing.T) *store.Gateway {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	if err := store.Connect(); err != nil {
		t.Fatalf("connect store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gateway := store.NewGateway("go-basics")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := gateway.SaveSchedules(models.ScheduleTable{
		"m1_loop_v1": {Key: "m1_loop_v1", Label: "Loop basics", EaseFactor: 2.5,
			Interval: 45, Repetitions: 6, NextReview: now, LastQuality: models.QualityEasy, ReviewCount: 8},
		"m2_map_v1": {Key: "m2_map_v1", EaseFactor: 1.4,
			Interval: 1, Repetitions: 0, NextReview: now, LastQuality: models.QualityFail, ReviewCount: 3},
	}); err != nil {
		t.Fatal(err)
	}
	if err := gateway.SaveActivity(models.ActivityMap{"2026-03-09": 4, "2026-03-10": 2}); err != nil {
		t.Fatal(err)
	}
	return gateway
}

func TestExportToExcel(t *testing.T) {
	gateway := setupExportData(t)
	path := filepath.Join(t.TempDir(), "progress.xlsx")

	result, err := ExportProgress(gateway, DefaultExportConfig(path))
	if err != nil {
		t.Fatalf("ExportProgress: %v", err)
	}
	if result.Records != 2 || result.Mastered != 1 || result.Days != 2 {
		t.Errorf("result = %+v, want 2 records, 1 mastered, 2 days", result)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Mastery")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("mastery rows = %d, want header + 2 records", len(rows))
	}
	if rows[1][0] != "m1_loop_v1" || rows[2][0] != "m2_map_v1" {
		t.Errorf("rows not sorted by key: %v, %v", rows[1][0], rows[2][0])
	}

	activityRows, err := f.GetRows("Activity")
	if err != nil {
		t.Fatal(err)
	}
	if len(activityRows) != 3 {
		t.Errorf("activity rows = %d, want header + 2 days", len(activityRows))
	}
}

func TestExportToCSV(t *testing.T) {
	gateway := setupExportData(t)
	path := filepath.Join(t.TempDir(), "progress.csv")

	result, err := ExportProgress(gateway, DefaultExportConfig(path))
	if err != nil {
		t.Fatalf("ExportProgress: %v", err)
	}
	if result.Records != 2 {
		t.Errorf("records = %d, want 2", result.Records)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want header + 2 records", len(rows))
	}
	if rows[0][0] != "Key" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "m1_loop_v1" {
		t.Errorf("first record = %v, want m1_loop_v1", rows[1])
	}
}
