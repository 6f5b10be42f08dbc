package settings

import (
	"context"
	"testing"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	setting := &models.Setting{
		MonitorDelayMS:   2500,
		RetryDelayMS:     1500,
		AutoTasksEnabled: true,
		MinConfidence:    0.8,
		MinPriority:      "high",
	}
	if err := repo.Save(ctx, setting); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.MonitorDelayMS != 2500 || got.MinPriority != "high" {
		t.Fatalf("unexpected settings row: %+v", got)
	}

	// A second save replaces the singleton row instead of adding one.
	setting.MonitorDelayMS = 5000
	if err := repo.Save(ctx, setting); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int64
	if err := repo.(*repositoryImpl).db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single settings row, got %d", count)
	}

	got, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.MonitorDelayMS != 5000 {
		t.Fatalf("update not applied: %+v", got)
	}
}
