package backup

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/noamsh/makolet/internal/database"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

type backupEnv struct {
	manager   *Manager
	exporter  *Exporter
	shopping  *store.ShoppingStore
	inventory *store.InventoryStore
	settings  *store.SettingsStore
}

func setupBackupEnv(t *testing.T, mock *mockS3Client) backupEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	shopping := store.NewShoppingStore(db)
	inventory := store.NewInventoryStore(db)
	history := store.NewHistoryStore(db)
	lists := store.NewGroceryListStore(db)
	learned := store.NewLearnedCategoryStore(db)
	settings := store.NewSettingsStore(db)
	exporter := NewExporter(shopping, inventory, history, lists, learned, settings)

	m := NewManager(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}, exporter, store.NewBackupStore(db), settings, nil)
	m.client = mock

	return backupEnv{manager: m, exporter: exporter, shopping: shopping, inventory: inventory, settings: settings}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(S3Config{}, nil, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// With S3 config -> idle
	m2 := NewManager(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}, nil, nil, nil, nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}, nil, nil, nil, cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"}, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerCachedPassphrase(t *testing.T) {
	m := NewManager(S3Config{}, nil, nil, nil, nil)

	if m.HasCachedPassphrase() {
		t.Error("expected no cached passphrase")
	}
	m.CachePassphrase("secret")
	if !m.HasCachedPassphrase() {
		t.Error("expected cached passphrase")
	}
}

func TestUpdateS3Config(t *testing.T) {
	m := NewManager(S3Config{}, nil, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Fatalf("initial state = %q, want %q", m.Status().State, StateDisabled)
	}

	m.UpdateS3Config(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"})
	if m.Status().State != StateIdle {
		t.Errorf("state after set = %q, want %q", m.Status().State, StateIdle)
	}

	m.UpdateS3Config(S3Config{})
	if m.Status().State != StateDisabled {
		t.Errorf("state after clear = %q, want %q", m.Status().State, StateDisabled)
	}
}

func TestRunNowWithoutConfig(t *testing.T) {
	m := NewManager(S3Config{}, nil, nil, nil, nil)

	if _, err := m.RunNow(context.Background(), "passphrase"); err == nil {
		t.Fatal("expected error without S3 configuration")
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	mock := newMockS3()
	source := setupBackupEnv(t, mock)

	source.shopping.Create(model.ShoppingItem{Name: "חלב", Category: model.CategoryDairy, Quantity: 2})
	source.inventory.Create(model.InventoryItem{Name: "אורז", Category: model.CategoryPantry, Quantity: 3, MinQuantity: 1})

	backupID, err := source.manager.RunNow(context.Background(), "household-secret")
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if len(mock.objects) != 1 {
		t.Fatalf("expected 1 uploaded object, got %d", len(mock.objects))
	}

	// The uploaded payload must not contain plaintext item names.
	for _, data := range mock.objects {
		if strings.Contains(string(data), "חלב") {
			t.Error("uploaded payload should be encrypted")
		}
	}

	// Restore into the same database is a no-op: every id exists.
	stats, err := source.manager.Restore(context.Background(), backupID, "household-secret")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if stats.ShoppingItems != 0 || stats.InventoryItems != 0 {
		t.Errorf("restore into source added rows: %+v", stats)
	}

	// A fresh database needs its own backup record pointing at the same
	// object to restore from.
	target := setupBackupEnv(t, mock)
	srcKey := ""
	for key := range mock.objects {
		srcKey = key
	}

	record, err := target.manager.backupStore.Create("restored.json.enc", srcKey)
	if err != nil {
		t.Fatalf("create target record: %v", err)
	}

	stats, err = target.manager.Restore(context.Background(), record.ID, "household-secret")
	if err != nil {
		t.Fatalf("restore into fresh db: %v", err)
	}
	if stats.ShoppingItems != 1 {
		t.Errorf("shopping items imported = %d, want 1", stats.ShoppingItems)
	}
	if stats.InventoryItems != 1 {
		t.Errorf("inventory items imported = %d, want 1", stats.InventoryItems)
	}

	milk, _ := target.shopping.FindUnpurchasedByName("חלב")
	if milk == nil || milk.Quantity != 2 {
		t.Fatalf("restored shopping item = %+v", milk)
	}
}

func TestRunNowUploadFailureMarksRecordFailed(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("s3 unavailable")
	env := setupBackupEnv(t, mock)

	if _, err := env.manager.RunNow(context.Background(), "household-secret"); err == nil {
		t.Fatal("expected upload error")
	}

	records, err := env.manager.backupStore.List(10)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want %q", records[0].Status, model.BackupStatusFailed)
	}
	if records[0].ErrorMessage == "" {
		t.Error("failed record should carry the upload error")
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	mock := newMockS3()
	env := setupBackupEnv(t, mock)

	backupID, err := env.manager.RunNow(context.Background(), "right")
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	if _, err := env.manager.Restore(context.Background(), backupID, "wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}
