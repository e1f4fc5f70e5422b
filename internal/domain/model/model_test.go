package model

import (
	"testing"
	"time"
)

// TestFormatSize проверяет форматирование размеров с основанием 1024.
func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "ноль", bytes: 0, want: "0 B"},
		{name: "байты", bytes: 512, want: "512 B"},
		{name: "граница KB", bytes: 1023, want: "1023 B"},
		{name: "ровно 1 KB", bytes: 1024, want: "1 KB"},
		{name: "полтора KB", bytes: 1536, want: "1.5 KB"},
		{name: "половина округляется вверх", bytes: 1152, want: "1.13 KB"},
		{name: "половина округляется вверх 1.625", bytes: 1664, want: "1.63 KB"},
		{name: "половина в MB", bytes: 1179648, want: "1.13 MB"},
		{name: "анализ крови", bytes: 245000, want: "239.26 KB"},
		{name: "рецепт", bytes: 180000, want: "175.78 KB"},
		{name: "рентген", bytes: 1200000, want: "1.14 MB"},
		{name: "ровно 1 MB", bytes: 1024 * 1024, want: "1 MB"},
		{name: "ровно 1 GB", bytes: 1024 * 1024 * 1024, want: "1 GB"},
		{name: "больше GB - остаётся GB", bytes: 5 * 1024 * 1024 * 1024 * 1024, want: "5120 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.bytes); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, ожидалось %q", tt.bytes, got, tt.want)
			}
		})
	}
}

// TestCategoryLabel проверяет названия категорий и fallback.
func TestCategoryLabel(t *testing.T) {
	tests := map[string]string{
		"lab-results":   "Lab Results",
		"prescriptions": "Prescriptions",
		"imaging":       "Imaging",
		"reports":       "Reports",
		"other":         "Other",
		"unknown-xyz":   "unknown-xyz",
		"":              "",
	}
	for in, want := range tests {
		if got := CategoryLabel(in); got != want {
			t.Errorf("CategoryLabel(%q) = %q, ожидалось %q", in, got, want)
		}
	}
}

// TestCategory_Known проверяет принадлежность фиксированному списку.
func TestCategory_Known(t *testing.T) {
	for _, c := range Categories() {
		if !c.Known() {
			t.Errorf("категория %q должна быть известной", c)
		}
	}
	if Category("dental").Known() {
		t.Error("категория dental не должна быть известной")
	}
}

// TestComputeStats проверяет агрегат по сид-данным.
func TestComputeStats(t *testing.T) {
	now := time.Now()
	records := []HealthRecord{
		{ID: "1", FileSize: 245000, Category: CategoryLabResults, UploadDate: now},
		{ID: "2", FileSize: 180000, Category: CategoryPrescriptions, UploadDate: now},
		{ID: "3", FileSize: 1200000, Category: CategoryImaging, UploadDate: now},
		{ID: "4", FileSize: 10, Category: CategoryImaging, UploadDate: now},
	}

	stats := ComputeStats(records)

	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, ожидалось 4", stats.TotalFiles)
	}
	if stats.TotalSize != 1625010 {
		t.Errorf("TotalSize = %d, ожидалось 1625010", stats.TotalSize)
	}
	if stats.Categories[CategoryImaging] != 2 {
		t.Errorf("Categories[imaging] = %d, ожидалось 2", stats.Categories[CategoryImaging])
	}
	if _, ok := stats.Categories[CategoryReports]; ok {
		t.Error("категория reports без записей не должна присутствовать")
	}
	if len(stats.RecentUploads) != RecentUploadsLimit {
		t.Fatalf("RecentUploads = %d, ожидалось %d", len(stats.RecentUploads), RecentUploadsLimit)
	}
	for i, want := range []string{"1", "2", "3"} {
		if stats.RecentUploads[i].ID != want {
			t.Errorf("RecentUploads[%d].ID = %q, ожидалось %q", i, stats.RecentUploads[i].ID, want)
		}
	}
}

// TestComputeStats_Empty проверяет агрегат пустой коллекции.
func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalFiles != 0 || stats.TotalSize != 0 {
		t.Errorf("ожидалась пустая статистика, получено %+v", stats)
	}
	if stats.Categories == nil {
		t.Error("Categories не должна быть nil")
	}
	if len(stats.RecentUploads) != 0 {
		t.Errorf("RecentUploads = %d, ожидалось 0", len(stats.RecentUploads))
	}
}

// TestUploadStats_Clone проверяет независимость копии.
func TestUploadStats_Clone(t *testing.T) {
	preview := "thumb://1"
	stats := ComputeStats([]HealthRecord{{ID: "1", Category: CategoryOther, Preview: &preview}})

	copied := stats.Clone()
	copied.Categories[CategoryOther] = 42
	*copied.RecentUploads[0].Preview = "changed"

	if stats.Categories[CategoryOther] != 1 {
		t.Error("изменение копии затронуло Categories оригинала")
	}
	if *stats.RecentUploads[0].Preview != "thumb://1" {
		t.Error("изменение копии затронуло Preview оригинала")
	}
}
