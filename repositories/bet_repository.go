package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var ErrBetNotFound = errors.New("bet not found")

// BetRepository stores score and binary bets. Every loaded bet carries its match,
// the match group with its phase and both teams when set. A bet is removed together
// with its match (ON DELETE CASCADE), see MatchRepository.Delete.
type BetRepository interface {
	CreateScoreBet(ctx context.Context, exec SQLExecutor, bet *models.ScoreBet) error
	// GetScoreBet loads a bet owned by userID. forUpdate locks the bet row until the transaction ends.
	GetScoreBet(ctx context.Context, exec SQLExecutor, userID, id uuid.UUID, forUpdate bool) (*models.ScoreBet, error)
	UpdateScoreBet(ctx context.Context, exec SQLExecutor, bet *models.ScoreBet) error
	ListScoreBets(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.ScoreBet, error)

	CreateBinaryBet(ctx context.Context, exec SQLExecutor, bet *models.BinaryBet) error
	GetBinaryBet(ctx context.Context, exec SQLExecutor, userID, id uuid.UUID, forUpdate bool) (*models.BinaryBet, error)
	UpdateBinaryBet(ctx context.Context, exec SQLExecutor, bet *models.BinaryBet) error
	ListBinaryBets(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.BinaryBet, error)
}

type postgresBetRepository struct {
	db *sql.DB
}

func NewPostgresBetRepository(db *sql.DB) BetRepository {
	return &postgresBetRepository{db: db}
}

const scoreBetSelect = `
	SELECT sb.id, sb.match_id, sb.score1, sb.score2,` + matchColumns + `
	FROM score_bets sb
	JOIN matches m ON m.id = sb.match_id` + matchJoins

const binaryBetSelect = `
	SELECT bb.id, bb.match_id, bb.is_one_won,` + matchColumns + `
	FROM binary_bets bb
	JOIN matches m ON m.id = bb.match_id` + matchJoins

func (r *postgresBetRepository) CreateScoreBet(ctx context.Context, exec SQLExecutor, bet *models.ScoreBet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO score_bets (id, match_id, score1, score2) VALUES ($1, $2, $3, $4)`,
		bet.ID, bet.MatchID, bet.Score1, bet.Score2)
	if err != nil {
		return mapBetWriteError(err)
	}
	return nil
}

func (r *postgresBetRepository) GetScoreBet(ctx context.Context, exec SQLExecutor, userID, id uuid.UUID, forUpdate bool) (*models.ScoreBet, error) {
	query := scoreBetSelect + ` WHERE sb.id = $1 AND m.user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF sb`
	}
	bet, err := scanScoreBet(getExecutor(r.db, exec).QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get score bet %s: %w", id, err)
	}
	return bet, nil
}

func (r *postgresBetRepository) UpdateScoreBet(ctx context.Context, exec SQLExecutor, bet *models.ScoreBet) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE score_bets SET score1 = $1, score2 = $2 WHERE id = $3`, bet.Score1, bet.Score2, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to update score bet %s: %w", bet.ID, err)
	}
	return checkAffectedRows(result, ErrBetNotFound)
}

func (r *postgresBetRepository) ListScoreBets(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.ScoreBet, error) {
	where, args := filter.clauses()
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		scoreBetSelect+where+` ORDER BY p.index ASC, g.index ASC, m.index ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list score bets: %w", err)
	}
	defer rows.Close()

	bets := make([]*models.ScoreBet, 0)
	for rows.Next() {
		bet, err := scanScoreBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score bets: %w", err)
	}
	return bets, nil
}

func (r *postgresBetRepository) CreateBinaryBet(ctx context.Context, exec SQLExecutor, bet *models.BinaryBet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO binary_bets (id, match_id, is_one_won) VALUES ($1, $2, $3)`,
		bet.ID, bet.MatchID, bet.IsOneWon)
	if err != nil {
		return mapBetWriteError(err)
	}
	return nil
}

func (r *postgresBetRepository) GetBinaryBet(ctx context.Context, exec SQLExecutor, userID, id uuid.UUID, forUpdate bool) (*models.BinaryBet, error) {
	query := binaryBetSelect + ` WHERE bb.id = $1 AND m.user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF bb`
	}
	bet, err := scanBinaryBet(getExecutor(r.db, exec).QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get binary bet %s: %w", id, err)
	}
	return bet, nil
}

func (r *postgresBetRepository) UpdateBinaryBet(ctx context.Context, exec SQLExecutor, bet *models.BinaryBet) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE binary_bets SET is_one_won = $1 WHERE id = $2`, bet.IsOneWon, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to update binary bet %s: %w", bet.ID, err)
	}
	return checkAffectedRows(result, ErrBetNotFound)
}

func (r *postgresBetRepository) ListBinaryBets(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.BinaryBet, error) {
	where, args := filter.clauses()
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		binaryBetSelect+where+` ORDER BY p.index ASC, g.index ASC, m.index ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list binary bets: %w", err)
	}
	defer rows.Close()

	bets := make([]*models.BinaryBet, 0)
	for rows.Next() {
		bet, err := scanBinaryBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan binary bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating binary bets: %w", err)
	}
	return bets, nil
}

func scanScoreBet(row rowScanner) (*models.ScoreBet, error) {
	var bet models.ScoreBet
	var score1, score2 sql.NullInt64
	var s matchScan
	dest := append([]interface{}{&bet.ID, &bet.MatchID, &score1, &score2}, s.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	bet.Score1 = nullableInt(score1)
	bet.Score2 = nullableInt(score2)
	bet.Match = s.match()
	return &bet, nil
}

func scanBinaryBet(row rowScanner) (*models.BinaryBet, error) {
	var bet models.BinaryBet
	var isOneWon sql.NullBool
	var s matchScan
	dest := append([]interface{}{&bet.ID, &bet.MatchID, &isOneWon}, s.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	bet.IsOneWon = nullableBool(isOneWon)
	bet.Match = s.match()
	return &bet, nil
}

func mapBetWriteError(err error) error {
	if _, ok := constraintViolation(err, foreignKeyViolation); ok {
		return ErrMatchNotFound
	}
	return fmt.Errorf("failed to write bet: %w", err)
}
