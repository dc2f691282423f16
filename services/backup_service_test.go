package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/betting-pool/storage"
)

type memUploader struct {
	key         string
	contentType string
	body        []byte
}

func (u *memUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://backups.example/" + key
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return n.err
}

func TestBackup(t *testing.T) {
	env := newTestEnv(t)
	env.admin(t)
	env.signup(t, "alice")

	uploader := &memUploader{}
	notifier := &recordingNotifier{err: errors.New("telegram is down")}
	at := time.Date(2024, 6, 14, 21, 30, 5, 0, time.UTC)
	backup := NewBackupService(env.txr, env.users, env.matches, env.bets, uploader, notifier, func() time.Time { return at })

	result, err := backup.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if result.Key != "backups/20240614T213005Z.json" {
		t.Errorf("Backup() key = %q", result.Key)
	}
	if uploader.contentType != "application/json" {
		t.Errorf("content type = %q", uploader.contentType)
	}
	if bytes.Contains(uploader.body, []byte("$argon2id$")) {
		t.Errorf("backup contains password verifiers")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(uploader.body, &snapshot); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(snapshot.Users) != 2 || len(snapshot.Matches) != 8 || len(snapshot.ScoreBets) != 6 || len(snapshot.BinaryBets) != 2 {
		t.Errorf("snapshot has %d users, %d matches, %d score and %d binary bets, want 2, 8, 6, 2",
			len(snapshot.Users), len(snapshot.Matches), len(snapshot.ScoreBets), len(snapshot.BinaryBets))
	}
	if !snapshot.CreatedAt.Equal(at) {
		t.Errorf("snapshot created at %v, want %v", snapshot.CreatedAt, at)
	}

	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], result.Key) {
		t.Errorf("notifications = %v, want one mentioning %s", notifier.messages, result.Key)
	}
}

func TestBackupWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	backup := NewBackupService(env.txr, env.users, env.matches, env.bets, nil, nil, nil)
	if _, err := backup.Backup(context.Background()); err == nil {
		t.Errorf("Backup() without storage error = nil")
	}
}
