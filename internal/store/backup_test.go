package store

import (
	"testing"
	"time"

	"github.com/noamsh/makolet/internal/database"
	"github.com/noamsh/makolet/internal/model"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupLifecycle(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("backup-2026-08-30.db.enc", "backups/backup-2026-08-30.db.enc")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := bs.UpdateCompleted(b.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get backup: %v", err)
	}
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
}

func TestBackupFailure(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, _ := bs.Create("backup.db.enc", "backups/backup.db.enc")
	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload timeout"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "upload timeout" {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
}

func TestBackupGetByIDNotFound(t *testing.T) {
	bs := setupBackupTestDB(t)

	got, err := bs.GetByID(9999)
	if err != nil {
		t.Fatalf("get backup: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent backup")
	}
}

func TestBackupLatestCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	if latest, _ := bs.LatestCompleted(); latest != nil {
		t.Fatal("expected nil with no completed backups")
	}

	first, _ := bs.Create("a.db.enc", "backups/a.db.enc")
	bs.UpdateCompleted(first.ID, 1)
	second, _ := bs.Create("b.db.enc", "backups/b.db.enc")
	bs.UpdateCompleted(second.ID, 2)

	latest, err := bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest completed: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest id = %d, want %d", latest.ID, second.ID)
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupTestDB(t)

	old, _ := bs.Create("old.db.enc", "backups/old.db.enc")
	if _, err := bs.db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, time.Now().UTC().AddDate(0, 0, -60), old.ID); err != nil {
		t.Fatalf("age backup: %v", err)
	}
	bs.Create("new.db.enc", "backups/new.db.enc")

	keys, err := bs.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/old.db.enc" {
		t.Fatalf("deleted keys = %v", keys)
	}

	backups, _ := bs.List(10)
	if len(backups) != 1 {
		t.Fatalf("expected 1 remaining backup, got %d", len(backups))
	}
}
