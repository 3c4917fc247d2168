// Package backup exports full-state snapshots and ships them, encrypted,
// to S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager schedules and runs encrypted snapshot backups.
type Manager struct {
	mu       sync.RWMutex
	cfg      S3Config
	status   Status
	callback StatusCallback

	exporter      *Exporter
	backupStore   *store.BackupStore
	settingsStore *store.SettingsStore
	client        s3Client

	// passphrase is cached in memory only, for scheduled runs.
	passphrase string

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg S3Config, exporter *Exporter, bs *store.BackupStore, ss *store.SettingsStore, callback StatusCallback) *Manager {
	m := &Manager{
		cfg:           cfg,
		exporter:      exporter,
		backupStore:   bs,
		settingsStore: ss,
		callback:      callback,
		status:        Status{State: StateDisabled},
	}

	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	}

	return m
}

// LoadS3Config assembles the backup target from stored settings. Missing
// keys read as empty strings, which leaves the manager disabled.
func LoadS3Config(ss *store.SettingsStore) (S3Config, error) {
	var cfg S3Config
	for key, dst := range map[string]*string{
		"backup_s3_bucket":     &cfg.Bucket,
		"backup_s3_region":     &cfg.Region,
		"backup_s3_endpoint":   &cfg.Endpoint,
		"backup_s3_access_key": &cfg.AccessKey,
		"backup_s3_secret_key": &cfg.SecretKey,
	} {
		value, err := ss.Get(key)
		if err != nil {
			return S3Config{}, fmt.Errorf("load %s: %w", key, err)
		}
		*dst = value
	}
	return cfg, nil
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// UpdateS3Config hot-reloads the S3 configuration.
func (m *Manager) UpdateS3Config(cfg S3Config) {
	m.mu.Lock()
	m.cfg = cfg
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	} else {
		m.client = nil
		m.status.State = StateDisabled
	}
	status := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(status)
	}
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// CachePassphrase keeps the passphrase in memory for scheduled backups.
func (m *Manager) CachePassphrase(passphrase string) {
	m.mu.Lock()
	m.passphrase = passphrase
	m.mu.Unlock()
}

// HasCachedPassphrase reports whether scheduled backups can run.
func (m *Manager) HasCachedPassphrase() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passphrase != ""
}

func (m *Manager) checkSchedule(ctx context.Context) {
	now := time.Now().UTC()

	settings, err := m.settingsStore.GetAll()
	if err != nil {
		return
	}
	if settings["backup_enabled"] != "true" {
		return
	}

	hour, _ := strconv.Atoi(settings["backup_schedule_hour"])
	if now.Hour() != hour || now.Minute() != 0 {
		return
	}

	m.mu.RLock()
	passphrase := m.passphrase
	m.mu.RUnlock()

	if passphrase == "" {
		slog.Warn("skipping scheduled backup, no cached passphrase")
		return
	}

	if _, err := m.RunNow(ctx, passphrase); err != nil {
		slog.Error("scheduled backup failed", "error", err)
	}

	retentionDays, _ := strconv.Atoi(settings["backup_retention_days"])
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if err := m.Cleanup(ctx, retentionDays); err != nil {
		slog.Error("backup cleanup failed", "error", err)
	}
}

// RunNow exports a snapshot, encrypts it, and uploads it immediately.
// Returns the backup record id.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return 0, fmt.Errorf("backup not configured: S3 credentials missing")
	}

	salt, err := m.passphraseSalt()
	if err != nil {
		return 0, err
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	snap, err := m.exporter.Export()
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("export snapshot: %w", err)
	}

	plaintext, err := json.Marshal(snap)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	encrypted, err := Encrypt(plaintext, passphrase, salt)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("encrypt snapshot: %w", err)
	}

	timestamp := snap.Timestamp.Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("snapshot-%s-%s.json.enc", timestamp, snap.ID)
	s3Key := "snapshots/" + filename

	record, err := m.backupStore.Create(filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("create backup record: %w", err)
	}

	if err := m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
		slog.Error("failed to mark backup uploading", "id", record.ID, "error", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(encrypted),
		ContentLength: aws.Int64(int64(len(encrypted))),
	})
	if err != nil {
		if serr := m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); serr != nil {
			slog.Error("failed to mark backup failed", "id", record.ID, "error", serr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("upload to s3: %w", err)
	}

	if err := m.backupStore.UpdateCompleted(record.ID, int64(len(encrypted))); err != nil {
		slog.Error("failed to mark backup completed", "id", record.ID, "error", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})

	slog.Info("snapshot backup uploaded", "key", s3Key, "bytes", len(encrypted))
	return record.ID, nil
}

func (m *Manager) passphraseSalt() ([]byte, error) {
	saltHex, err := m.settingsStore.Get("backup_passphrase_salt")
	if err != nil {
		return nil, fmt.Errorf("get backup salt: %w", err)
	}
	if saltHex == "" {
		salt, err := GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := m.settingsStore.Set("backup_passphrase_salt", hex.EncodeToString(salt)); err != nil {
			return nil, fmt.Errorf("save backup salt: %w", err)
		}
		return salt, nil
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return salt, nil
}

// Restore downloads a backup, decrypts it, and merges the snapshot into
// the current state.
func (m *Manager) Restore(ctx context.Context, backupID int64, passphrase string) (ImportStats, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return ImportStats{}, fmt.Errorf("backup not configured")
	}

	record, err := m.backupStore.GetByID(backupID)
	if err != nil {
		return ImportStats{}, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return ImportStats{}, fmt.Errorf("backup not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	encrypted, err := io.ReadAll(result.Body)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read downloaded backup: %w", err)
	}

	plaintext, err := Decrypt(encrypted, passphrase)
	if err != nil {
		return ImportStats{}, fmt.Errorf("decrypt backup: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return ImportStats{}, fmt.Errorf("decode snapshot: %w", err)
	}

	stats, err := m.exporter.Import(&snap)
	if err != nil {
		return stats, fmt.Errorf("import snapshot: %w", err)
	}

	slog.Info("snapshot restored", "backup_id", backupID, "snapshot_id", snap.ID)
	return stats, nil
}

// Download streams an encrypted backup from S3.
func (m *Manager) Download(ctx context.Context, backupID int64) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, 0, fmt.Errorf("backup not configured")
	}

	record, err := m.backupStore.GetByID(backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return nil, 0, fmt.Errorf("backup not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record.SizeBytes, nil
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	keys, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			slog.Error("failed to delete s3 object", "key", key, "error", err)
		}
	}

	return nil
}

// List returns recent backup records.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backupStore.List(limit)
}
