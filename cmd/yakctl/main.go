package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Dosada05/betting-pool/config"
	"github.com/Dosada05/betting-pool/db"
	"github.com/Dosada05/betting-pool/notifications"
	"github.com/Dosada05/betting-pool/officialresults"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/Dosada05/betting-pool/services"
	"github.com/Dosada05/betting-pool/storage"
)

const usage = `usage: yakctl <command> [flags]

commands:
  migrate                   apply the database schema
  init-db -data DIR         load phases, groups, teams and matches from DIR
  create-admin -password P  create the admin user
  sync                      apply official results to the admin bets
  backup                    upload a JSON snapshot to the bucket
  score-board               print the leaderboard
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load configuration", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer dbConn.Close()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "migrate":
		err = db.Migrate(ctx, dbConn)
	case "init-db":
		err = initDB(ctx, dbConn, args)
	case "create-admin":
		err = createAdmin(ctx, cfg, dbConn, args)
	case "sync":
		err = synchronize(ctx, cfg, dbConn)
	case "backup":
		err = backup(ctx, cfg, dbConn)
	case "score-board":
		err = printScoreBoard(ctx, cfg, dbConn)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		fatal(command+" failed", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

func initDB(ctx context.Context, dbConn *sql.DB, args []string) error {
	fs := flag.NewFlagSet("init-db", flag.ExitOnError)
	dataDir := fs.String("data", "data", "directory holding phases.json, groups.json, teams.json and matches.json")
	_ = fs.Parse(args)

	data, err := services.LoadSeedData(os.DirFS(*dataDir))
	if err != nil {
		return err
	}

	if err := db.Migrate(ctx, dbConn); err != nil {
		return err
	}

	seeder := services.NewSeedService(
		repositories.NewPostgresTransactor(dbConn),
		repositories.NewPostgresStructureRepository(dbConn),
	)
	report, err := seeder.Seed(ctx, data)
	if err != nil {
		return err
	}

	fmt.Printf("seeded %d phases, %d groups, %d teams, %d matches\n",
		report.Phases, report.Groups, report.Teams, report.Matches)
	return nil
}

func createAdmin(ctx context.Context, cfg *config.Config, dbConn *sql.DB, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	password := fs.String("password", "", "admin password")
	_ = fs.Parse(args)

	if *password == "" {
		return fmt.Errorf("-password is required")
	}

	authService := services.NewAuthService(
		repositories.NewPostgresTransactor(dbConn),
		repositories.NewPostgresUserRepository(dbConn),
		repositories.NewPostgresStructureRepository(dbConn),
		repositories.NewPostgresMatchRepository(dbConn),
		repositories.NewPostgresBetRepository(dbConn),
		repositories.NewPostgresGroupPositionRepository(dbConn),
		services.NewTokenService(cfg.JWTSecretKey, cfg.JWTExpiration, nil),
		storage.NoopScoreBoardCache{},
	)
	admin, err := authService.CreateAdmin(ctx, *password)
	if err != nil {
		return err
	}

	fmt.Printf("admin created: %s\n", admin.ID)
	return nil
}

func synchronize(ctx context.Context, cfg *config.Config, dbConn *sql.DB) error {
	syncService := services.NewSyncService(
		repositories.NewPostgresTransactor(dbConn),
		repositories.NewPostgresUserRepository(dbConn),
		repositories.NewPostgresStructureRepository(dbConn),
		repositories.NewPostgresMatchRepository(dbConn),
		repositories.NewPostgresBetRepository(dbConn),
		repositories.NewPostgresGroupPositionRepository(dbConn),
		officialresults.NewFetcher(cfg.SyncFetcher, time.Minute),
		cfg.OfficialResultsURL,
	)
	report, err := syncService.Synchronize(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("synchronized %d matches: %d score bets, %d binary bets\n",
		report.Matches, report.ScoreBets, report.BinaryBets)
	return nil
}

func backup(ctx context.Context, cfg *config.Config, dbConn *sql.DB) error {
	uploader, err := storage.NewR2Uploader(ctx, storage.R2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		return err
	}

	notifier, err := notifications.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		// без уведомлений бэкап всё равно делаем
		slog.Warn("telegram notifier disabled", slog.Any("error", err))
		notifier = notifications.LogNotifier{}
	}

	backupService := services.NewBackupService(
		repositories.NewPostgresTransactor(dbConn),
		repositories.NewPostgresUserRepository(dbConn),
		repositories.NewPostgresMatchRepository(dbConn),
		repositories.NewPostgresBetRepository(dbConn),
		uploader,
		notifier,
		nil,
	)
	result, err := backupService.Backup(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("backup uploaded: %s\n", result.Key)
	return nil
}

func printScoreBoard(ctx context.Context, cfg *config.Config, dbConn *sql.DB) error {
	resultService := services.NewResultService(
		repositories.NewPostgresTransactor(dbConn),
		repositories.NewPostgresUserRepository(dbConn),
		repositories.NewPostgresBetRepository(dbConn),
		repositories.NewPostgresStructureRepository(dbConn),
		repositories.NewPostgresGroupPositionRepository(dbConn),
		cfg.Rules,
		storage.NoopScoreBoardCache{},
	)
	board, err := resultService.ScoreBoard(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tRESULTS\tSCORES\tQUALIFIED\tFIRST\tPOINTS")
	for _, r := range board {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%.2f\n",
			r.Rank, r.FullName, r.NumberMatchGuess, r.NumberScoreGuess,
			r.NumberQualifiedTeamsGuess, r.NumberFirstQualifiedGuess, r.Points)
	}
	return tw.Flush()
}
