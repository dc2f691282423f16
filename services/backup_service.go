package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/notifications"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/Dosada05/betting-pool/storage"
)

// Snapshot is the JSON document written by a backup. Password hashes are never included.
type Snapshot struct {
	CreatedAt  time.Time           `json:"created_at"`
	Users      []*models.User      `json:"users"`
	Matches    []*models.Match     `json:"matches"`
	ScoreBets  []*models.ScoreBet  `json:"score_bets"`
	BinaryBets []*models.BinaryBet `json:"binary_bets"`
}

type BackupService interface {
	Backup(ctx context.Context) (*storage.UploadResult, error)
}

type backupService struct {
	txr       repositories.Transactor
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
	betRepo   repositories.BetRepository
	uploader  storage.FileUploader
	notifier  notifications.Notifier
	now       Clock
}

func NewBackupService(
	txr repositories.Transactor,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	betRepo repositories.BetRepository,
	uploader storage.FileUploader,
	notifier notifications.Notifier,
	now Clock,
) BackupService {
	if now == nil {
		now = SystemClock
	}
	return &backupService{
		txr:       txr,
		userRepo:  userRepo,
		matchRepo: matchRepo,
		betRepo:   betRepo,
		uploader:  uploader,
		notifier:  notifier,
		now:       now,
	}
}

func (s *backupService) Backup(ctx context.Context) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, errors.New("backup storage is not configured")
	}

	snapshot := &Snapshot{CreatedAt: s.now().UTC()}
	err := s.txr.WithinTx(ctx, &sql.TxOptions{ReadOnly: true}, func(exec repositories.SQLExecutor) error {
		return s.collect(ctx, exec, snapshot)
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	key := fmt.Sprintf("backups/%s.json", snapshot.CreatedAt.Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	slog.Info("backup uploaded", slog.String("key", result.Key), slog.Int("users", len(snapshot.Users)))

	if s.notifier != nil {
		text := fmt.Sprintf("Backup %s: %d users, %d matches", result.Key, len(snapshot.Users), len(snapshot.Matches))
		if err := s.notifier.Notify(ctx, text); err != nil {
			// бэкап уже загружен, уведомление не критично
			slog.Warn("backup notification failed", slog.Any("error", err))
		}
	}
	return result, nil
}

func (s *backupService) collect(ctx context.Context, exec repositories.SQLExecutor, snapshot *Snapshot) error {
	players, err := s.userRepo.ListPlayers(ctx, exec)
	if err != nil {
		return err
	}
	admin, err := s.userRepo.GetByName(ctx, exec, models.AdminName)
	switch {
	case err == nil:
		snapshot.Users = append(snapshot.Users, admin)
	case !errors.Is(err, repositories.ErrUserNotFound):
		return err
	}
	snapshot.Users = append(snapshot.Users, players...)

	all := repositories.MatchFilter{}
	if snapshot.Matches, err = s.matchRepo.List(ctx, exec, all); err != nil {
		return err
	}
	if snapshot.ScoreBets, err = s.betRepo.ListScoreBets(ctx, exec, all); err != nil {
		return err
	}
	if snapshot.BinaryBets, err = s.betRepo.ListBinaryBets(ctx, exec, all); err != nil {
		return err
	}
	return nil
}
